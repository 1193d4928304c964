package display

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/rbright/netscreen/internal/config"
)

const propertyLength = 1 << 16

type x11Enumerator struct {
	conn       *xgb.Conn
	root       xproto.Window
	display    string
	selectArgv []string
	atoms      map[string]xproto.Atom
}

func openX11(display string, selectArgv []string) (*x11Enumerator, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display %s: %w", display, err)
	}
	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init randr extension: %w", err)
	}

	return &x11Enumerator{
		conn:       conn,
		root:       xproto.Setup(conn).DefaultScreen(conn).Root,
		display:    display,
		selectArgv: selectArgv,
		atoms:      map[string]xproto.Atom{},
	}, nil
}

func (e *x11Enumerator) Backend() string     { return config.BackendX11 }
func (e *x11Enumerator) DisplayName() string { return e.display }

func (e *x11Enumerator) Close() error {
	e.conn.Close()
	return nil
}

// Monitors walks RandR outputs; an output without a CRTC is inactive.
func (e *x11Enumerator) Monitors(_ context.Context) (Layout, error) {
	resources, err := randr.GetScreenResourcesCurrent(e.conn, e.root).Reply()
	if err != nil {
		return Layout{}, fmt.Errorf("randr screen resources: %w", err)
	}
	primary, err := randr.GetOutputPrimary(e.conn, e.root).Reply()
	if err != nil {
		return Layout{}, fmt.Errorf("randr primary output: %w", err)
	}

	var layout Layout
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(e.conn, output, resources.ConfigTimestamp).Reply()
		if err != nil {
			return Layout{}, fmt.Errorf("randr output %d: %w", output, err)
		}
		name := string(info.Name)
		if info.Crtc == 0 {
			layout.Inactive = append(layout.Inactive, name)
			continue
		}

		crtc, err := randr.GetCrtcInfo(e.conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return Layout{}, fmt.Errorf("randr crtc for %s: %w", name, err)
		}
		layout.Active = append(layout.Active, Monitor{
			Name:    name,
			Width:   int(crtc.Width),
			Height:  int(crtc.Height),
			X:       int(crtc.X),
			Y:       int(crtc.Y),
			Primary: output == primary.Output,
		})
	}
	return layout, nil
}

// Windows lists the window manager's managed clients (_NET_CLIENT_LIST).
func (e *x11Enumerator) Windows(_ context.Context) ([]Window, error) {
	ids, err := e.windowListProperty("_NET_CLIENT_LIST")
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(ids))
	for _, id := range ids {
		window, err := e.describe(id)
		if err != nil {
			continue
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (e *x11Enumerator) Focused(_ context.Context) (Window, error) {
	ids, err := e.windowListProperty("_NET_ACTIVE_WINDOW")
	if err != nil {
		return Window{}, err
	}
	if len(ids) == 0 || ids[0] == 0 {
		return Window{}, ErrNoFocusedWindow
	}
	return e.describe(ids[0])
}

func (e *x11Enumerator) Select(ctx context.Context) (Window, error) {
	id, err := runSelectCommand(ctx, e.selectArgv)
	if err != nil {
		return Window{}, err
	}
	return e.describe(xproto.Window(id))
}

func (e *x11Enumerator) describe(id xproto.Window) (Window, error) {
	geometry, err := xproto.GetGeometry(e.conn, xproto.Drawable(id)).Reply()
	if err != nil {
		return Window{}, fmt.Errorf("geometry of window 0x%x: %w", uint32(id), err)
	}
	origin, err := xproto.TranslateCoordinates(e.conn, id, e.root, 0, 0).Reply()
	if err != nil {
		return Window{}, fmt.Errorf("position of window 0x%x: %w", uint32(id), err)
	}

	return Window{
		ID:     uint64(id),
		Class:  e.windowClass(id),
		Title:  e.windowTitle(id),
		Width:  int(geometry.Width),
		Height: int(geometry.Height),
		X:      int(origin.DstX),
		Y:      int(origin.DstY),
	}, nil
}

func (e *x11Enumerator) windowListProperty(name string) ([]xproto.Window, error) {
	atom, err := e.atom(name)
	if err != nil {
		return nil, err
	}
	if atom == xproto.AtomNone {
		return nil, fmt.Errorf("window manager does not publish %s", name)
	}

	reply, err := xproto.GetProperty(e.conn, false, e.root, atom, xproto.AtomWindow, 0, propertyLength).Reply()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return decodeWindowList(reply.Format, reply.Value), nil
}

func (e *x11Enumerator) windowTitle(id xproto.Window) string {
	netName, _ := e.atom("_NET_WM_NAME")
	utf8, _ := e.atom("UTF8_STRING")
	if netName != xproto.AtomNone && utf8 != xproto.AtomNone {
		reply, err := xproto.GetProperty(e.conn, false, id, netName, utf8, 0, propertyLength).Reply()
		if err == nil && len(reply.Value) > 0 {
			return string(reply.Value)
		}
	}

	reply, err := xproto.GetProperty(e.conn, false, id, xproto.AtomWmName, xproto.AtomString, 0, propertyLength).Reply()
	if err != nil {
		return ""
	}
	return string(reply.Value)
}

func (e *x11Enumerator) windowClass(id xproto.Window) string {
	reply, err := xproto.GetProperty(e.conn, false, id, xproto.AtomWmClass, xproto.AtomString, 0, propertyLength).Reply()
	if err != nil {
		return ""
	}
	return decodeWMClass(reply.Value)
}

func (e *x11Enumerator) atom(name string) (xproto.Atom, error) {
	if atom, ok := e.atoms[name]; ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(e.conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone, fmt.Errorf("intern atom %s: %w", name, err)
	}
	e.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// decodeWindowList unpacks a format-32 property value into window ids.
func decodeWindowList(format byte, value []byte) []xproto.Window {
	if format != 32 {
		return nil
	}
	ids := make([]xproto.Window, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		ids = append(ids, xproto.Window(xgb.Get32(value[i:])))
	}
	return ids
}

// decodeWMClass returns the class half of WM_CLASS ("instance\0class\0").
func decodeWMClass(value []byte) string {
	parts := bytes.Split(bytes.TrimRight(value, "\x00"), []byte{0})
	if len(parts) == 0 {
		return ""
	}
	return string(parts[len(parts)-1])
}

// runSelectCommand runs the interactive picker and parses the window id it prints.
func runSelectCommand(ctx context.Context, argv []string) (uint64, error) {
	if len(argv) == 0 {
		return 0, ErrSelectUnsupported
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed == "" && strings.TrimSpace(stderr.String()) == "" {
			return 0, ErrSelectionCancelled
		}
		return 0, fmt.Errorf("%s failed: %w (%s)", argv[0], err, strings.TrimSpace(stderr.String()))
	}
	if trimmed == "" {
		return 0, ErrSelectionCancelled
	}

	fields := strings.Fields(trimmed)
	id, ok := ParseWindowID(fields[len(fields)-1])
	if !ok {
		return 0, fmt.Errorf("%s printed an invalid window id: %q", argv[0], trimmed)
	}
	return id, nil
}
