package handlers

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	CmdSetup  CommandType = "setup"
	CmdAdd    CommandType = "add"
	CmdRemove CommandType = "remove"
	CmdList   CommandType = "list"
	CmdConfig CommandType = "config"
	CmdStatus CommandType = "status"
	CmdPause  CommandType = "pause"
	CmdResume CommandType = "resume"
	CmdHelp   CommandType = "help"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw:  text,
		Args: parts[1:],
	}

	switch parts[0] {
	case "setup":
		cmd.Type = CmdSetup
	case "add":
		cmd.Type = CmdAdd
	case "remove", "rm":
		cmd.Type = CmdRemove
	case "list", "ls":
		cmd.Type = CmdList
	case "config":
		cmd.Type = CmdConfig
	case "status":
		cmd.Type = CmdStatus
	case "pause":
		cmd.Type = CmdPause
	case "resume":
		cmd.Type = CmdResume
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

func GetHelpText() string {
	return `*Available commands:*

*Setup:*
• ` + "`/standup setup`" + ` - Set up a standup for this channel
• ` + "`/standup add @user`" + ` - Add a participant
• ` + "`/standup remove @user`" + ` - Remove a participant
• ` + "`/standup list`" + ` - List participants

*Configuration:*
• ` + "`/standup config time HH:MM`" + ` - Collection start time
• ` + "`/standup config days mon,tue,wed,thu,fri`" + ` - Active weekdays
• ` + "`/standup config timezone America/New_York`" + ` - IANA timezone
• ` + "`/standup config timeout 2`" + ` - Response window in hours
• ` + "`/standup config lead 40`" + ` - Reminder lead in minutes
• ` + "`/standup config mode direct-to-each-member`" + ` - Delivery mode
• ` + "`/standup config questions Q1 | Q2 | Q3`" + ` - Questions, pipe-separated

*Control:*
• ` + "`/standup status`" + ` - Today's participation
• ` + "`/standup pause`" + ` - Pause scheduling
• ` + "`/standup resume`" + ` - Resume scheduling`
}
