package components

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/mitchellh/go-homedir"
	"github.com/sahilm/fuzzy"
)

// FileFilter restricts which files the picker lists. A nil Extensions
// list shows every file.
type FileFilter struct {
	Label      string
	Extensions []string
}

// Match reports whether name passes the filter.
func (f FileFilter) Match(name string) bool {
	if f.Extensions == nil {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range f.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DefaultFilters lists MP3 files first, then everything.
var DefaultFilters = []FileFilter{
	{Label: "MP3 files (*.mp3)", Extensions: []string{".mp3"}},
	{Label: "All files (*.*)"},
}

// FileEntry represents a file or directory in the browser
type FileEntry struct {
	Name  string
	Path  string
	IsDir bool
}

// FileEntries adapts a slice of entries to fuzzy.Source.
type FileEntries []FileEntry

func (e FileEntries) String(i int) string { return e[i].Name }
func (e FileEntries) Len() int            { return len(e) }

// FilePickedMsg reports the outcome of the picker. An empty Path means the
// user cancelled.
type FilePickedMsg struct {
	Path string
}

// FileBrowser is a file picker that navigates the filesystem
type FileBrowser struct {
	Width       int
	Height      int
	CurrentPath string
	Entries     []FileEntry // everything shown for the current filter
	Visible     []FileEntry // Entries narrowed by the fuzzy query
	Selected    int
	Offset      int
	Filters     []FileFilter
	FilterIdx   int
	Query       FilterInput
	Err         error

	// Styles
	DirStyle      lipgloss.Style
	FileStyle     lipgloss.Style
	SelectedStyle lipgloss.Style
	PathStyle     lipgloss.Style
	BorderStyle   lipgloss.Style
	MutedStyle    lipgloss.Style
}

// NewFileBrowser creates a new file browser starting at the given path
func NewFileBrowser(startPath string, width, height int) FileBrowser {
	fb := FileBrowser{
		Width:   width,
		Height:  height,
		Filters: DefaultFilters,
		Query:   NewFilterInput(width - 8),
		DirStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true),
		FileStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")),
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("255")).
			Bold(true),
		PathStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		MutedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}

	if startPath == "" {
		startPath = "~"
	}
	if expanded, err := homedir.Expand(startPath); err == nil {
		startPath = expanded
	}
	if abs, err := filepath.Abs(startPath); err == nil {
		startPath = abs
	}

	fb.Navigate(startPath)
	return fb
}

// Filter returns the active file filter
func (fb *FileBrowser) Filter() FileFilter {
	return fb.Filters[fb.FilterIdx]
}

// Navigate changes to the specified directory
func (fb *FileBrowser) Navigate(path string) {
	fb.CurrentPath = path
	fb.Selected = 0
	fb.Offset = 0
	fb.Err = nil
	fb.Query.Clear()
	fb.Query.Blur()
	fb.reload()
}

// reload re-reads the current directory with the active filter
func (fb *FileBrowser) reload() {
	entries, err := os.ReadDir(fb.CurrentPath)
	if err != nil {
		fb.Err = err
		fb.Entries = nil
		fb.applyQuery()
		return
	}

	fb.Entries = make([]FileEntry, 0, len(entries)+1)

	// Add parent directory entry (unless at root)
	if parent := filepath.Dir(fb.CurrentPath); parent != fb.CurrentPath {
		fb.Entries = append(fb.Entries, FileEntry{
			Name:  "..",
			Path:  parent,
			IsDir: true,
		})
	}

	var dirs, files []FileEntry
	filter := fb.Filter()

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fullPath := filepath.Join(fb.CurrentPath, entry.Name())
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(fullPath); err == nil {
				isDir = info.IsDir()
			}
		}

		switch {
		case isDir:
			dirs = append(dirs, FileEntry{Name: entry.Name(), Path: fullPath, IsDir: true})
		case filter.Match(entry.Name()):
			files = append(files, FileEntry{Name: entry.Name(), Path: fullPath})
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.ToLower(dirs[i].Name) < strings.ToLower(dirs[j].Name)
	})
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})

	fb.Entries = append(fb.Entries, dirs...)
	fb.Entries = append(fb.Entries, files...)
	fb.applyQuery()
}

// applyQuery narrows Entries to fuzzy matches of the query, best first
func (fb *FileBrowser) applyQuery() {
	query := fb.Query.String()
	if query == "" {
		fb.Visible = fb.Entries
	} else {
		matches := fuzzy.FindFrom(query, FileEntries(fb.Entries))
		fb.Visible = make([]FileEntry, len(matches))
		for i, m := range matches {
			fb.Visible[i] = fb.Entries[m.Index]
		}
	}
	if fb.Selected >= len(fb.Visible) {
		fb.Selected = 0
		fb.Offset = 0
	}
}

// NextFilter cycles to the next file filter
func (fb *FileBrowser) NextFilter() {
	fb.FilterIdx = (fb.FilterIdx + 1) % len(fb.Filters)
	fb.Selected = 0
	fb.Offset = 0
	fb.reload()
}

// Update handles input messages. Enter on a file and Esc both end the
// picker with a FilePickedMsg.
func (fb FileBrowser) Update(msg tea.Msg) (FileBrowser, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return fb, nil
	}

	if fb.Query.Focused {
		switch key.String() {
		case "esc":
			fb.Query.Clear()
			fb.Query.Blur()
			fb.applyQuery()
		case "enter", "up", "down":
			fb.Query.Blur()
			return fb.Update(msg)
		default:
			fb.Query, _ = fb.Query.Update(msg)
			fb.Selected = 0
			fb.Offset = 0
			fb.applyQuery()
		}
		return fb, nil
	}

	switch key.String() {
	case "up", "k":
		if fb.Selected > 0 {
			fb.Selected--
			fb.ensureVisible()
		}
	case "down", "j":
		if fb.Selected < len(fb.Visible)-1 {
			fb.Selected++
			fb.ensureVisible()
		}
	case "pgup":
		fb.Selected -= fb.visibleHeight()
		if fb.Selected < 0 {
			fb.Selected = 0
		}
		fb.ensureVisible()
	case "pgdown":
		fb.Selected += fb.visibleHeight()
		if fb.Selected >= len(fb.Visible) {
			fb.Selected = len(fb.Visible) - 1
		}
		if fb.Selected < 0 {
			fb.Selected = 0
		}
		fb.ensureVisible()
	case "home", "g":
		fb.Selected = 0
		fb.ensureVisible()
	case "end", "G":
		fb.Selected = len(fb.Visible) - 1
		if fb.Selected < 0 {
			fb.Selected = 0
		}
		fb.ensureVisible()
	case "backspace", "h":
		if parent := filepath.Dir(fb.CurrentPath); parent != fb.CurrentPath {
			fb.Navigate(parent)
		}
	case "~":
		if home, err := homedir.Dir(); err == nil {
			fb.Navigate(home)
		}
	case "tab":
		fb.NextFilter()
	case "/":
		fb.Query.Focus()
	case "enter", "l":
		if path := fb.EnterSelected(); path != "" {
			return fb, pickCmd(path)
		}
	case "esc", "q":
		return fb, pickCmd("")
	}
	return fb, nil
}

// shortenPath keeps the tail of path, which names the directory the user
// is in, when it does not fit in width cells.
func shortenPath(path string, width int) string {
	over := runewidth.StringWidth(path) - width
	if over <= 0 {
		return path
	}
	return runewidth.TruncateLeft(path, over+1, "…")
}

func pickCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return FilePickedMsg{Path: path}
	}
}

// SelectedEntry returns the currently selected entry, or nil if none
func (fb *FileBrowser) SelectedEntry() *FileEntry {
	if fb.Selected >= 0 && fb.Selected < len(fb.Visible) {
		return &fb.Visible[fb.Selected]
	}
	return nil
}

// EnterSelected handles Enter on the selected entry
// Returns the file path if a file was selected, empty string if navigated to dir
func (fb *FileBrowser) EnterSelected() string {
	entry := fb.SelectedEntry()
	if entry == nil {
		return ""
	}

	if entry.IsDir {
		fb.Navigate(entry.Path)
		return ""
	}

	return entry.Path
}

// visibleHeight returns the number of visible items
func (fb *FileBrowser) visibleHeight() int {
	h := fb.Height - 9 // border, path, filter, query, help
	if h < 1 {
		return 1
	}
	return h
}

// ensureVisible ensures the selected item is visible
func (fb *FileBrowser) ensureVisible() {
	visible := fb.visibleHeight()
	if fb.Selected < fb.Offset {
		fb.Offset = fb.Selected
	} else if fb.Selected >= fb.Offset+visible {
		fb.Offset = fb.Selected - visible + 1
	}
}

// View renders the file browser
func (fb FileBrowser) View() string {
	var sb strings.Builder
	inner := fb.Width - 6

	sb.WriteString(fb.PathStyle.Render("📁 " + shortenPath(fb.CurrentPath, inner-3)))
	sb.WriteString("\n")
	sb.WriteString(fb.MutedStyle.Render("Type: " + fb.Filter().Label + "  [Tab] change"))
	sb.WriteString("\n")
	sb.WriteString(fb.Query.View())
	sb.WriteString("\n\n")

	if fb.Err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		sb.WriteString(errorStyle.Render("Error: " + fb.Err.Error()))
		sb.WriteString("\n")
	}

	visible := fb.visibleHeight()
	end := fb.Offset + visible
	if end > len(fb.Visible) {
		end = len(fb.Visible)
	}

	for i := fb.Offset; i < end; i++ {
		entry := fb.Visible[i]

		var line string
		if entry.IsDir {
			line = "📂 " + entry.Name
		} else {
			line = "🎵 " + entry.Name
		}
		line = runewidth.Truncate(line, inner, "…")

		switch {
		case i == fb.Selected:
			sb.WriteString(fb.SelectedStyle.Render(line))
		case entry.IsDir:
			sb.WriteString(fb.DirStyle.Render(line))
		default:
			sb.WriteString(fb.FileStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	for i := end - fb.Offset; i < visible; i++ {
		sb.WriteString("\n")
	}

	fileCount := 0
	for _, e := range fb.Visible {
		if !e.IsDir {
			fileCount++
		}
	}
	sb.WriteString(fb.MutedStyle.Render(fmt.Sprintf("%s\nFiles: %d", strings.Repeat("─", 20), fileCount)))

	sb.WriteString("\n")
	sb.WriteString(fb.MutedStyle.Render("[Enter] Open  [Backspace] Up  [~] Home  [/] Filter  [Esc] Cancel"))

	return fb.BorderStyle.Width(fb.Width - 2).Render(sb.String())
}
