// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-annotator/internal/annotator"
	"image-annotator/internal/app"
	"image-annotator/internal/editor"
	"image-annotator/internal/events"
	"image-annotator/internal/image"
	"image-annotator/internal/logging"
	"image-annotator/internal/version"
	"image-annotator/ui/canvas"
	"image-annotator/ui/panels"
	"image-annotator/ui/prefs"
)

const appTitle = "Image Annotator"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.AnnotationCanvas
	sidePanel *panels.AnnotationsPanel
	statusBar *widget.Label

	editorPopUp *widget.PopUp
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(
		float32(p.Float(prefs.KeyWindowWidth, 1024)),
		float32(p.Float(prefs.KeyWindowHeight, 720)),
	))
	win.SetCloseIntercept(mw.onClose)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAnnotationCanvas()

	mw.sidePanel = panels.NewAnnotationsPanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Open an image to start annotating")

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), mw.onOpenImage),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), mw.onSaveAnnotations),
		widget.NewToolbarAction(theme.UploadIcon(), mw.onExport),
		widget.NewToolbarSeparator(),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.InfoIcon(), mw.onAbout),
	)

	split := container.NewHSplit(mw.canvas, mw.sidePanel.Container())
	split.SetOffset(0.75)

	content := container.NewBorder(
		toolbar,                           // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Annotations", mw.onSaveAnnotations),
		fyne.NewMenuItem("Export Annotated Image...", mw.onExport),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		path := data.(string)
		mw.bindAnnotator(mw.state.Annotator)
		mw.canvas.SetImage(mw.state.Image, mw.state.Annotator)
		mw.sidePanel.Sync()
		mw.updateTitle()
		mw.updateStatus(fmt.Sprintf("Loaded %s (%d×%d)", filepath.Base(path),
			mw.state.Image.Width(), mw.state.Image.Height()))
	})

	mw.state.On(app.EventModified, func(interface{}) {
		mw.updateTitle()
	})

	mw.state.On(app.EventAnnotationsSaved, func(data interface{}) {
		mw.updateStatus("Saved " + filepath.Base(data.(string)))
	})

	mw.state.On(app.EventExported, func(data interface{}) {
		mw.updateStatus("Exported " + filepath.Base(data.(string)))
	})
}

// bindAnnotator hooks the window into the events of a new annotator.
func (mw *MainWindow) bindAnnotator(a *annotator.ImageAnnotator) {
	a.AddHandler(events.SelectionCompleted, func(interface{}) {
		mw.showEditor(a)
	})
	a.AddHandler(events.AnnotationEditCancel, func(interface{}) {
		mw.hideEditor()
	})
	a.AddHandler(events.AnnotationCreated, func(interface{}) {
		mw.sidePanel.Sync()
	})
	a.AddHandler(events.MouseOverAnnotation, func(data interface{}) {
		ev := data.(events.MouseOverAnnotationEvent)
		mw.updateStatus(panels.Label(ev.Annotation))
	})
	a.AddHandler(events.MouseOutOfAnnotation, func(interface{}) {
		mw.updateStatus("")
	})
}

// showEditor opens the popup that names the completed selection, just below
// the selection on the canvas.
func (mw *MainWindow) showEditor(a *annotator.ImageAnnotator) {
	ed := a.Editor()
	if ed == nil {
		return
	}
	mw.hideEditor()

	entry := widget.NewMultiLineEntry()
	entry.SetPlaceHolder("Add a comment...")
	entry.SetMinRowsVisible(3)

	save := widget.NewButtonWithIcon("Save", theme.ConfirmIcon(), func() {
		mw.saveEdit(ed, entry.Text)
	})
	save.Importance = widget.HighImportance
	cancel := widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), func() {
		mw.hideEditor()
		if err := ed.Cancel(); err != nil {
			logging.WithComponent("mainwindow").Warn("cancel annotation", slog.Any("err", err))
		}
	})

	content := container.NewBorder(nil,
		container.NewHBox(layout.NewSpacer(), cancel, save),
		nil, nil, entry)

	anchor := ed.Anchor()
	pos := mw.app.Driver().AbsolutePositionForObject(mw.canvas).
		Add(fyne.NewPos(float32(anchor.X), float32(anchor.Y)))

	mw.editorPopUp = widget.NewPopUp(content, mw.Canvas())
	mw.editorPopUp.Resize(fyne.NewSize(260, content.MinSize().Height))
	mw.editorPopUp.ShowAtPosition(pos)
	mw.Canvas().Focus(entry)
}

// saveEdit commits the pending annotation. The popup stays up on failure
// unless the editor is already closed.
func (mw *MainWindow) saveEdit(ed *editor.Editor, text string) {
	if _, err := ed.Save(text); err != nil {
		logging.WithComponent("mainwindow").Error("save annotation", slog.Any("err", err))
		if errors.Is(err, editor.ErrClosed) {
			mw.hideEditor()
		}
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.hideEditor()
}

func (mw *MainWindow) hideEditor() {
	if mw.editorPopUp != nil {
		mw.editorPopUp.Hide()
		mw.editorPopUp = nil
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateTitle() {
	title := appTitle
	if mw.state.ImagePath != "" {
		title += " - " + filepath.Base(mw.state.ImagePath)
	}
	if mw.state.IsModified() {
		title += " *"
	}
	mw.SetTitle(title)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// OpenImage loads the image at path and remembers it.
func (mw *MainWindow) OpenImage(path string) {
	if err := mw.state.LoadImage(path); err != nil {
		logging.WithComponent("mainwindow").Error("open image",
			slog.String("path", path), slog.Any("err", err))
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.saveLastDir(path)
	mw.prefs.SetString(prefs.KeyLastImage, path)
}

// RestoreLastImage reopens the image from the previous session, if any.
func (mw *MainWindow) RestoreLastImage() {
	if path := mw.prefs.String(prefs.KeyLastImage); path != "" {
		if err := mw.state.LoadImage(path); err != nil {
			logging.WithComponent("mainwindow").Warn("restore last image",
				slog.String("path", path), slog.Any("err", err))
		}
	}
}

// Menu action handlers

func (mw *MainWindow) onOpenImage() {
	open := func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			mw.OpenImage(reader.URI().Path())
		}, mw.Window)
		fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedFormats()))
		if loc := mw.getLastDir(); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Show()
	}
	mw.confirmDiscard(open)
}

func (mw *MainWindow) onSaveAnnotations() {
	if err := mw.state.SaveAnnotations(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onExport() {
	if mw.state.Annotator == nil {
		dialog.ShowError(app.ErrNoImage, mw.Window)
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)
		mw.prefs.SetString(prefs.KeyExportFormat, strings.TrimPrefix(filepath.Ext(path), "."))
		if err := mw.state.Export(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)

	format := mw.prefs.String(prefs.KeyExportFormat)
	if format == "" {
		format = mw.state.Config.Export.DefaultFormat
	}
	base := strings.TrimSuffix(filepath.Base(mw.state.ImagePath), filepath.Ext(mw.state.ImagePath))
	fd.SetFileName(base + "_annotated." + format)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Draw rectangles on an image and attach notes to them.",
			appTitle, version.String()),
		mw.Window)
}

// confirmDiscard runs next, asking first if there are unsaved annotations.
func (mw *MainWindow) confirmDiscard(next func()) {
	if !mw.state.IsModified() {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Annotations",
		"Discard the unsaved annotations?",
		func(discard bool) {
			if discard {
				next()
			}
		}, mw.Window)
}

func (mw *MainWindow) onClose() {
	mw.confirmDiscard(func() {
		mw.SavePreferences()
		mw.Close()
	})
}

// SavePreferences stores the window size and writes preferences to disk.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.SaveIfChanged(); err != nil {
		logging.WithComponent("mainwindow").Warn("save preferences", slog.Any("err", err))
	}
}
