package window

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ErrPropsMismatch means a props variant was attached to a window of a different app.
var ErrPropsMismatch = errors.New("props kind does not match app id")

// Props is the app-specific payload of a window. Each variant belongs to
// exactly one app, named by Kind.
type Props interface {
	Kind() AppID
}

// MarkdownProps points the markdown viewer at a document
type MarkdownProps struct {
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
}

// Kind implements Props
func (MarkdownProps) Kind() AppID { return AppMarkdown }

// FolderProps selects the folder a folder window lists
type FolderProps struct {
	FolderID string `json:"folderId"`
}

// Kind implements Props
func (FolderProps) Kind() AppID { return AppFolder }

// BrowserProps is the page shown in the browser window
type BrowserProps struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Kind implements Props
func (BrowserProps) Kind() AppID { return AppBrowser }

// TerminalProps sets the terminal's starting directory
type TerminalProps struct {
	Cwd string `json:"cwd,omitempty"`
}

// Kind implements Props
func (TerminalProps) Kind() AppID { return AppTerminal }

var propsDecoders = map[AppID]func([]byte) (Props, error){
	AppMarkdown: decodeVariant[MarkdownProps],
	AppFolder:   decodeVariant[FolderProps],
	AppBrowser:  decodeVariant[BrowserProps],
	AppTerminal: decodeVariant[TerminalProps],
}

func decodeVariant[T Props](data []byte) (Props, error) {
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// CheckProps verifies that props (if any) belong to the given app.
func CheckProps(id AppID, p Props) error {
	if p == nil || p.Kind() == id {
		return nil
	}
	return fmt.Errorf("%w: %s props on %s", ErrPropsMismatch, p.Kind(), id)
}

// EncodeProps writes props as a flat envelope: {"kind": "<app>", ...fields}.
// Nil props encode as JSON null.
func EncodeProps(p Props) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}

	raw, err := sonic.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s props: %w", p.Kind(), err)
	}

	fields := map[string]interface{}{}
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten %s props: %w", p.Kind(), err)
	}
	fields["kind"] = string(p.Kind())

	return sonic.Marshal(fields)
}

// DecodeProps reads an envelope written by EncodeProps.
func DecodeProps(data []byte) (Props, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var head struct {
		Kind AppID `json:"kind"`
	}
	if err := sonic.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read props kind: %w", err)
	}

	decode, ok := propsDecoders[head.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPropsKind, head.Kind)
	}
	return decode(data)
}

func propsEqual(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

type instanceJSON struct {
	ID       AppID           `json:"id"`
	Status   Status          `json:"status"`
	Position Position        `json:"position"`
	Size     Size            `json:"size"`
	Props    json.RawMessage `json:"props,omitempty"`
}

// MarshalJSON encodes the instance with its props envelope.
func (w Instance) MarshalJSON() ([]byte, error) {
	props, err := EncodeProps(w.Props)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(instanceJSON{
		ID:       w.ID,
		Status:   w.Status,
		Position: w.Position,
		Size:     w.Size,
		Props:    props,
	})
}

// UnmarshalJSON decodes an instance and validates its props variant.
func (w *Instance) UnmarshalJSON(data []byte) error {
	var raw instanceJSON
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}

	props, err := DecodeProps(raw.Props)
	if err != nil {
		return err
	}
	if err := CheckProps(raw.ID, props); err != nil {
		return err
	}

	*w = Instance{
		ID:       raw.ID,
		Status:   raw.Status,
		Position: raw.Position,
		Size:     raw.Size,
		Props:    props,
	}
	return nil
}
