package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantType CommandType
		wantArgs []string
		wantErr  bool
	}{
		{name: "empty text defaults to help", text: "", wantType: CmdHelp},
		{name: "whitespace only", text: "   ", wantType: CmdHelp},
		{name: "setup", text: "setup", wantType: CmdSetup},
		{name: "add with mention", text: "add <@U123|alice>", wantType: CmdAdd, wantArgs: []string{"<@U123|alice>"}},
		{name: "remove", text: "remove <@U123>", wantType: CmdRemove, wantArgs: []string{"<@U123>"}},
		{name: "rm alias", text: "rm <@U123>", wantType: CmdRemove, wantArgs: []string{"<@U123>"}},
		{name: "list", text: "list", wantType: CmdList},
		{name: "ls alias", text: "ls", wantType: CmdList},
		{name: "config with field and value", text: "config time 09:30", wantType: CmdConfig, wantArgs: []string{"time", "09:30"}},
		{name: "status", text: "status", wantType: CmdStatus},
		{name: "pause", text: "pause", wantType: CmdPause},
		{name: "resume", text: "resume", wantType: CmdResume},
		{name: "help", text: "help", wantType: CmdHelp},
		{name: "unknown command", text: "destroy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, cmd.Type)
			if tt.wantArgs != nil {
				assert.Equal(t, tt.wantArgs, cmd.Args)
			}
		})
	}
}

func TestParseUserMention(t *testing.T) {
	assert.Equal(t, "U123456", parseUserMention("<@U123456>"))
	assert.Equal(t, "U123456", parseUserMention("<@U123456|alice>"))
	assert.Equal(t, "U123456", parseUserMention("U123456"))
}

func TestGetHelpText(t *testing.T) {
	help := GetHelpText()
	for _, cmd := range []string{"setup", "add", "remove", "list", "config", "status", "pause", "resume"} {
		assert.Contains(t, help, cmd)
	}
}
