// Package ui implements the interactive terminal browser for the video
// library: list uploaded and processed videos, pick speakers for a clip, and
// watch a processing job run to completion.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clipworks/clipctl/internal/library"
	"github.com/clipworks/clipctl/internal/models"
	"github.com/clipworks/clipctl/internal/poller"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	SpeakerView
	WatchView
	ResultView
)

// SpeakerClient detects speakers in an uploaded video.
type SpeakerClient interface {
	DetectSpeakers(ctx context.Context, videoID int64) ([]models.Speaker, error)
	poller.StatusClient
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	lib    *library.Library
	client SpeakerClient
	poll   poller.Options
	width  int
	height int

	videoList     list.Model
	showProcessed bool
	selectedVideo models.VideoRecord

	speakerList list.Model
	speakers    []models.Speaker
	selection   *library.Selection

	watcher  *poller.Watcher
	progress models.JobState
	result   *poller.Result

	err  error
	help help.Model
	keys keyMap
}

type libraryFetchedMsg struct {
	err error
}

type speakersFetchedMsg struct {
	speakers []models.Speaker
	err      error
}

type jobStartedMsg struct {
	jobID string
	err   error
}

type progressMsg models.JobState

type watchDoneMsg poller.Result

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, lib *library.Library, client SpeakerClient, poll poller.Options) *Model {
	return &Model{
		ctx:       ctx,
		view:      LibraryView,
		lib:       lib,
		client:    client,
		poll:      poll,
		selection: library.NewSelection(),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init fetches the video collection.
func (m *Model) Init() tea.Cmd {
	return m.fetchLibrary()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.videoList.Width() == 0 {
			m.videoList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.speakerList.Width() == 0 {
			m.speakerList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case SpeakerView:
			return m.handleSpeakerKeys(msg)
		case WatchView:
			return m.handleWatchKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case libraryFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.rebuildVideoList()
		return m, nil

	case speakersFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = LibraryView
			return m, nil
		}
		m.speakers = msg.speakers
		m.selection.Clear()
		m.rebuildSpeakerList()
		m.view = SpeakerView
		return m, nil

	case jobStartedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = LibraryView
			return m, nil
		}
		m.watcher = poller.NewWatcher(m.client, msg.jobID, m.poll)
		m.watcher.Start(m.ctx)
		m.view = WatchView
		return m, m.waitForProgress()

	case progressMsg:
		m.progress = models.JobState(msg)
		return m, m.waitForProgress()

	case watchDoneMsg:
		res := poller.Result(msg)
		m.result = &res
		if res.Phase == poller.PhaseCompleted {
			m.lib.CompleteProcessing(m.selectedVideo.ID, res.State.ProcessedVideoPath)
		} else {
			m.lib.FailProcessing(m.selectedVideo.ID)
		}
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == LibraryView {
		return fmt.Sprintf("%s\n\n%s",
			styles.err.Render(fmt.Sprintf("Error: %v", m.err)),
			m.videoList.View())
	}

	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case SpeakerView:
		return m.renderSpeakers()
	case WatchView:
		return m.renderWatch()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.showProcessed = !m.showProcessed
		m.rebuildVideoList()
		return m, nil
	case "r":
		return m, m.fetchLibrary()
	case "enter":
		if m.showProcessed {
			return m, nil
		}
		selected := m.videoList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(videoItem); ok {
				m.selectedVideo = item.record
				m.err = nil
				return m, m.fetchSpeakers(item.record.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handleSpeakerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LibraryView
		return m, nil
	case " ":
		selected := m.speakerList.SelectedItem()
		if item, ok := selected.(speakerItem); ok {
			if _, err := m.selection.Toggle(item.speaker.ID); err != nil {
				m.err = err
			} else {
				m.err = nil
			}
			m.rebuildSpeakerList()
		}
		return m, nil
	case "enter":
		if m.selection.Count() == 0 {
			return m, nil
		}
		return m, m.startProcessing()
	}

	var cmd tea.Cmd
	m.speakerList, cmd = m.speakerList.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = LibraryView
		m.result = nil
		m.watcher = nil
		m.progress = models.JobState{}
		m.err = nil
		return m, m.fetchLibrary()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LibraryView:
		m.videoList, cmd = m.videoList.Update(msg)
	case SpeakerView:
		m.speakerList, cmd = m.speakerList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildVideoList() {
	records := m.lib.Uploaded()
	title := "Uploaded Videos"
	if m.showProcessed {
		records = m.lib.Processed()
		title = "Processed Videos"
	}

	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = videoItem{record: record}
	}
	m.videoList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.videoList.Title = title
	m.videoList.SetSize(m.width-4, m.height-8)
}

func (m *Model) rebuildSpeakerList() {
	index := m.speakerList.Index()

	items := make([]list.Item, len(m.speakers))
	for i, speaker := range m.speakers {
		items[i] = speakerItem{speaker: speaker, selected: m.selection.Contains(speaker.ID)}
	}
	m.speakerList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.speakerList.Title = fmt.Sprintf("Speakers in '%s'", m.selectedVideo.DisplayName())
	m.speakerList.SetSize(m.width-4, m.height-8)
	m.speakerList.Select(index)
}

func (m *Model) fetchLibrary() tea.Cmd {
	return func() tea.Msg {
		return libraryFetchedMsg{err: m.lib.FetchAll(m.ctx)}
	}
}

func (m *Model) fetchSpeakers(videoID int64) tea.Cmd {
	return func() tea.Msg {
		speakers, err := m.client.DetectSpeakers(m.ctx, videoID)
		return speakersFetchedMsg{speakers: speakers, err: err}
	}
}

func (m *Model) startProcessing() tea.Cmd {
	videoID := m.selectedVideo.ID
	selected := m.selection.IDs()
	return func() tea.Msg {
		jobID, err := m.lib.RequestProcessing(m.ctx, videoID, selected)
		return jobStartedMsg{jobID: jobID, err: err}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		select {
		case state, ok := <-m.watcher.Updates():
			if ok {
				return progressMsg(state)
			}
		case res := <-m.watcher.Result():
			return watchDoneMsg(res)
		}
		res := <-m.watcher.Result()
		return watchDoneMsg(res)
	}
}

func (m *Model) renderLibrary() string {
	swapKey := m.keys.swap
	helpKeys := []key.Binding{m.keys.enter, swapKey, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.videoList.View(), helpView)
}

func (m *Model) renderSpeakers() string {
	status := fmt.Sprintf("%d/%d selected", m.selection.Count(), library.MaxSelections)
	if m.err != nil {
		status = styles.warn.Render(m.err.Error())
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.speakerList.View(), status, helpView)
}

func (m *Model) renderWatch() string {
	title := styles.title.Render(fmt.Sprintf("Processing '%s'", m.selectedVideo.DisplayName()))

	var status string
	switch m.progress.Status {
	case models.JobProcessing:
		status = fmt.Sprintf("Processing... %d%%", m.progress.Progress)
	case models.JobQueued:
		status = "Waiting in queue..."
	default:
		status = "Submitting job..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, status, helpView)
}

func (m *Model) renderResult() string {
	var headline string
	switch {
	case m.result == nil:
		headline = styles.warn.Render("No result")
	case m.result.Phase == poller.PhaseCompleted:
		headline = styles.ok.Render("✓ Processing complete")
	case m.result.Phase == poller.PhaseFailed:
		headline = styles.err.Render("✗ Processing failed: " + m.result.State.Error)
	default:
		headline = styles.err.Render("✗ Lost contact with the job")
	}

	var detail string
	if m.result != nil && m.result.State.ProcessedVideoPath != "" {
		detail = fmt.Sprintf("\nOutput: %s\n", m.result.State.ProcessedVideoPath)
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", headline, detail, helpView)
}
