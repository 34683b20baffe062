package vecmul

import (
	"encoding/json"
	"fmt"
)

// Inbound frame types, carried in the "type" field.
const (
	FrameHello           = "HELLO"
	FrameAIStreamMessage = "AI_STREAM_MESSAGE"
	FrameRelatedLinks    = "RELATED_LINKS"
	FrameError           = "ERROR"
	FrameNewChatCreated  = "NEW_CHAT_CREATED"

	// frameChat is the only outbound type.
	frameChat = "CHAT"
)

// Kind classifies a decoded frame for the content filter.
type Kind int

const (
	KindOther Kind = iota
	KindHello
	KindAssistantContent
	KindRelatedLinks
	KindError
	KindNewChatCreated
)

// Frame is one decoded inbound message.
type Frame struct {
	Kind Kind
	Type string
	Text string // assistant content, set for KindAssistantContent
}

type rawFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type streamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DecodeFrame parses a text frame. A frame that is not JSON, or an
// AI_STREAM_MESSAGE whose payload does not decode, is an error; frames of
// unknown type decode to KindOther.
func DecodeFrame(data []byte) (Frame, error) {
	var raw rawFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}

	f := Frame{Type: raw.Type}
	switch raw.Type {
	case FrameHello:
		f.Kind = KindHello
	case FrameRelatedLinks:
		f.Kind = KindRelatedLinks
	case FrameError:
		f.Kind = KindError
	case FrameNewChatCreated:
		f.Kind = KindNewChatCreated
	case FrameAIStreamMessage:
		var msg streamMessage
		if err := json.Unmarshal(raw.Data, &msg); err != nil {
			return Frame{}, fmt.Errorf("decode %s payload: %w", raw.Type, err)
		}
		if msg.Role != "assistant" {
			f.Kind = KindOther
			break
		}
		f.Kind = KindAssistantContent
		f.Text = msg.Content
	default:
		f.Kind = KindOther
	}
	return f, nil
}

// chatFrame is the outbound "new chat" request.
type chatFrame struct {
	Type      string      `json:"type"`
	SpaceName string      `json:"spaceName"`
	Message   chatMessage `json:"message"`
}

type chatMessage struct {
	IsAnonymous     bool    `json:"isAnonymous"`
	RootMsgID       string  `json:"rootMsgId"`
	Public          bool    `json:"public"`
	Model           string  `json:"model"`
	Order           int     `json:"order"`
	Role            string  `json:"role"`
	Content         string  `json:"content"`
	FileID          *string `json:"fileId"`
	RelatedLinkInfo *string `json:"relatedLinkInfo"`
	MessageType     string  `json:"messageType"`
	FileKey         *string `json:"fileKey"`
	Language        string  `json:"language"`
}

func newChatFrame(content, rootMsgID, model, language, spaceName string) chatFrame {
	return chatFrame{
		Type:      frameChat,
		SpaceName: spaceName,
		Message: chatMessage{
			IsAnonymous: true,
			RootMsgID:   rootMsgID,
			Public:      false,
			Model:       model,
			Order:       0,
			Role:        "user",
			Content:     content,
			MessageType: "MESSAGE",
			Language:    language,
		},
	}
}
