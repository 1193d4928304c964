package display

import (
	"context"

	"github.com/rbright/netscreen/internal/config"
	"github.com/rbright/netscreen/internal/hypr"
)

// hyprEnumerator has no notion of a primary output; the focused monitor stands in.
type hyprEnumerator struct{}

func (hyprEnumerator) Backend() string     { return config.BackendHypr }
func (hyprEnumerator) DisplayName() string { return "" }
func (hyprEnumerator) Close() error        { return nil }

func (hyprEnumerator) Monitors(ctx context.Context) (Layout, error) {
	monitors, err := hypr.QueryMonitors(ctx)
	if err != nil {
		return Layout{}, err
	}

	var layout Layout
	for _, m := range monitors {
		if m.Disabled {
			layout.Inactive = append(layout.Inactive, m.Name)
			continue
		}
		layout.Active = append(layout.Active, Monitor{
			Name:    m.Name,
			Width:   m.Width,
			Height:  m.Height,
			X:       m.X,
			Y:       m.Y,
			Primary: m.Focused,
		})
	}
	return layout, nil
}

func (hyprEnumerator) Windows(ctx context.Context) ([]Window, error) {
	clients, err := hypr.QueryClients(ctx)
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, client := range clients {
		window, err := windowFromClient(client)
		if err != nil {
			continue
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (hyprEnumerator) Focused(ctx context.Context) (Window, error) {
	client, err := hypr.QueryActiveWindow(ctx)
	if err != nil {
		return Window{}, err
	}
	return windowFromClient(client)
}

func (hyprEnumerator) Select(context.Context) (Window, error) {
	return Window{}, ErrSelectUnsupported
}

func windowFromClient(client hypr.Client) (Window, error) {
	id, err := client.ID()
	if err != nil {
		return Window{}, err
	}
	return Window{
		ID:     id,
		Class:  client.Class,
		Title:  client.Title,
		X:      client.At[0],
		Y:      client.At[1],
		Width:  client.Size[0],
		Height: client.Size[1],
	}, nil
}
