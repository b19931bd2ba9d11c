package main

import (
	"fmt"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type SettingsCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *SettingsCommand) Run(ctx *Globals) error {
	fmt.Print(ctx.config)
	return nil
}
