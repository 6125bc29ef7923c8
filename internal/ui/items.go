package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/clipworks/clipctl/internal/models"
)

var (
	_ list.Item = videoItem{}
	_ list.Item = speakerItem{}
)

// videoItem wraps [models.VideoRecord] to implement [list.Item].
type videoItem struct {
	record models.VideoRecord
}

func (i videoItem) FilterValue() string { return i.record.DisplayName() }
func (i videoItem) Title() string       { return i.record.DisplayName() }
func (i videoItem) Description() string {
	desc := i.record.Status
	if desc == "" {
		desc = "uploaded"
	}
	if i.record.HasProcessed() {
		desc = fmt.Sprintf("%s • processed copy available", desc)
	}
	return desc
}

// speakerItem wraps [models.Speaker] to implement [list.Item].
type speakerItem struct {
	speaker  models.Speaker
	selected bool
}

func (i speakerItem) FilterValue() string { return fmt.Sprintf("speaker %d", i.speaker.ID) }
func (i speakerItem) Title() string {
	if i.selected {
		return fmt.Sprintf("[x] Speaker %d", i.speaker.ID)
	}
	return fmt.Sprintf("[ ] Speaker %d", i.speaker.ID)
}
func (i speakerItem) Description() string { return i.speaker.ThumbnailPath }
