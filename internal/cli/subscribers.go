package cli

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/ThePiemanYT/craftkeeper/internal/registry"
)

// SubscribersCmd manages the notification registry
type SubscribersCmd struct {
	List    SubscribersListCmd    `cmd:"" default:"1" help:"List subscribers"`
	Add     SubscribersAddCmd     `cmd:"" help:"Add a subscriber (notifications enabled)"`
	Remove  SubscribersRemoveCmd  `cmd:"" help:"Remove a subscriber"`
	Enable  SubscribersEnableCmd  `cmd:"" help:"Enable notifications for a subscriber"`
	Disable SubscribersDisableCmd `cmd:"" help:"Disable notifications for a subscriber"`
}

// SubscribersListCmd lists all subscribers
type SubscribersListCmd struct{}

// Run executes the list command
func (c *SubscribersListCmd) Run(globals *Globals) error {
	reg := registry.New(globals.Config.Paths.Registry)
	subs, err := reg.Load()
	if err != nil {
		return outputError(globals, "REGISTRY_UNREADABLE", err.Error())
	}

	if globals.Format == "json" {
		b, err := json.Marshal(subs)
		if err != nil {
			return err
		}
		fmt.Fprintln(globals.Stdout, string(b))
		return nil
	}

	if len(subs) == 0 {
		fmt.Fprintln(globals.Stdout, "No subscribers.")
		return nil
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("ID", "Name", "Notifications")
	for _, s := range subs {
		state := "off"
		if s.Enabled {
			state = "on"
		}
		table.Append([]string{s.ID, s.Name, state})
	}
	table.Render()
	return nil
}

// SubscribersAddCmd adds a subscriber
type SubscribersAddCmd struct {
	ID   string `arg:"" help:"Subscriber identity (chat user ID)"`
	Name string `arg:"" optional:"" help:"Display name"`
}

// Run executes the add command
func (c *SubscribersAddCmd) Run(globals *Globals) error {
	reg := registry.New(globals.Config.Paths.Registry)
	if err := reg.Add(c.ID, c.Name); err != nil {
		return outputError(globals, "REGISTRY_WRITE_FAILED", err.Error())
	}
	if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "Added %s\n", c.ID)
	}
	return nil
}

// SubscribersRemoveCmd removes a subscriber
type SubscribersRemoveCmd struct {
	ID string `arg:"" help:"Subscriber identity"`
}

// Run executes the remove command
func (c *SubscribersRemoveCmd) Run(globals *Globals) error {
	reg := registry.New(globals.Config.Paths.Registry)
	if err := reg.Remove(c.ID); err != nil {
		return outputError(globals, "REGISTRY_WRITE_FAILED", err.Error())
	}
	if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "Removed %s\n", c.ID)
	}
	return nil
}

// SubscribersEnableCmd enables notifications for a subscriber
type SubscribersEnableCmd struct {
	ID string `arg:"" help:"Subscriber identity"`
}

// Run executes the enable command
func (c *SubscribersEnableCmd) Run(globals *Globals) error {
	return setEnabled(globals, c.ID, true)
}

// SubscribersDisableCmd disables notifications for a subscriber
type SubscribersDisableCmd struct {
	ID string `arg:"" help:"Subscriber identity"`
}

// Run executes the disable command
func (c *SubscribersDisableCmd) Run(globals *Globals) error {
	return setEnabled(globals, c.ID, false)
}

func setEnabled(globals *Globals, id string, enabled bool) error {
	reg := registry.New(globals.Config.Paths.Registry)
	if err := reg.SetEnabled(id, enabled); err != nil {
		return outputError(globals, "REGISTRY_WRITE_FAILED", err.Error())
	}
	if !globals.Quiet {
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(globals.Stdout, "Notifications %s for %s\n", state, id)
	}
	return nil
}
