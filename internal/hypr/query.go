package hypr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Monitor is one Hyprland output, enabled or not.
type Monitor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Focused  bool   `json:"focused"`
	Disabled bool   `json:"disabled"`
}

// Workspace identifies where a client lives.
type Workspace struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client is one Hyprland toplevel window.
type Client struct {
	Address   string    `json:"address"`
	Mapped    bool      `json:"mapped"`
	Hidden    bool      `json:"hidden"`
	At        [2]int    `json:"at"`
	Size      [2]int    `json:"size"`
	Workspace Workspace `json:"workspace"`
	Class     string    `json:"class"`
	Title     string    `json:"title"`
}

// ID parses the hex client address into a numeric window id.
func (c Client) ID() (uint64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(c.Address), "0x")
	id, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse client address %q: %w", c.Address, err)
	}
	return id, nil
}

// QueryMonitors returns every output including disabled ones.
func QueryMonitors(ctx context.Context) ([]Monitor, error) {
	output, err := runHyprctlJSON(ctx, "monitors", "all")
	if err != nil {
		return nil, err
	}

	var monitors []Monitor
	if err := json.Unmarshal(output, &monitors); err != nil {
		return nil, fmt.Errorf("decode hyprctl monitors json: %w", err)
	}
	for i := range monitors {
		monitors[i].Name = strings.TrimSpace(monitors[i].Name)
	}
	return monitors, nil
}

// QueryClients returns mapped, visible windows.
func QueryClients(ctx context.Context) ([]Client, error) {
	output, err := runHyprctlJSON(ctx, "clients")
	if err != nil {
		return nil, err
	}

	var clients []Client
	if err := json.Unmarshal(output, &clients); err != nil {
		return nil, fmt.Errorf("decode hyprctl clients json: %w", err)
	}

	visible := clients[:0]
	for _, client := range clients {
		if !client.Mapped || client.Hidden {
			continue
		}
		client.Address = strings.TrimSpace(client.Address)
		client.Class = strings.TrimSpace(client.Class)
		client.Title = strings.TrimSpace(client.Title)
		visible = append(visible, client)
	}
	return visible, nil
}

// QueryActiveWindow fetches the focused client.
func QueryActiveWindow(ctx context.Context) (Client, error) {
	output, err := runHyprctlJSON(ctx, "activewindow")
	if err != nil {
		return Client{}, err
	}

	var window Client
	if err := json.Unmarshal(output, &window); err != nil {
		return Client{}, fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}
	window.Address = strings.TrimSpace(window.Address)
	window.Class = strings.TrimSpace(window.Class)
	window.Title = strings.TrimSpace(window.Title)
	if window.Address == "" {
		return Client{}, fmt.Errorf("hyprctl activewindow returned empty address")
	}
	return window, nil
}

// Notify sends a Hyprland notification payload.
func Notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if strings.TrimSpace(color) == "" {
		color = "rgb(89b4fa)"
	}
	return runHyprctl(
		ctx,
		"--quiet",
		"dispatch",
		"notify",
		strconv.Itoa(icon),
		strconv.Itoa(timeoutMS),
		color,
		text,
	)
}

// DismissNotify clears active Hyprland notifications.
func DismissNotify(ctx context.Context) error {
	return runHyprctl(ctx, "--quiet", "dispatch", "dismissnotify")
}

// runHyprctlJSON executes a JSON-returning hyprctl subcommand.
func runHyprctlJSON(ctx context.Context, target ...string) ([]byte, error) {
	output, err := runHyprctlOutput(ctx, append([]string{"-j"}, target...)...)
	if err != nil {
		return nil, err
	}
	return output, nil
}
