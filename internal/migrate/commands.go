package migrate

import "strings"

// Command enumerates the supported migrate sub-commands.
type Command int

// Supported commands. CommandHelp also covers every unknown token.
const (
	CommandHelp Command = iota
	CommandRun
	CommandCurrent
	CommandUp
	CommandDown
)

const (
	commandNameHelpConstant    = "help"
	commandNameRunConstant     = "run"
	commandNameCurrentConstant = "current"
	commandNameUpConstant      = "up"
	commandNameDownConstant    = "down"
	qualifiedCommandSeparator  = ":"
)

var commandsByName = map[string]Command{
	"":                         CommandRun,
	commandNameRunConstant:     CommandRun,
	commandNameCurrentConstant: CommandCurrent,
	commandNameUpConstant:      CommandUp,
	commandNameDownConstant:    CommandDown,
}

// ParseCommand maps a sub-command token to a Command. A missing token means run;
// anything unrecognised means help.
func ParseCommand(token string) Command {
	command, known := commandsByName[strings.ToLower(strings.TrimSpace(token))]
	if !known {
		return CommandHelp
	}
	return command
}

// String returns the sub-command token.
func (command Command) String() string {
	switch command {
	case CommandRun:
		return commandNameRunConstant
	case CommandCurrent:
		return commandNameCurrentConstant
	case CommandUp:
		return commandNameUpConstant
	case CommandDown:
		return commandNameDownConstant
	default:
		return commandNameHelpConstant
	}
}

// guardsExplicitVersion reports whether an explicit version restricts the command to one target.
func (command Command) guardsExplicitVersion() bool {
	return command == CommandRun || command == CommandUp || command == CommandDown
}

// NormalizeCommandArguments splits the qualified spelling "migrate:up" into
// "migrate" "up" so Cobra sees the sub-command as a positional argument.
func NormalizeCommandArguments(commandName string, arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	prefix := commandName + qualifiedCommandSeparator
	normalized := make([]string, 0, len(arguments)+1)
	for index, argument := range arguments {
		if argument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if strings.HasPrefix(argument, prefix) {
			normalized = append(normalized, commandName, strings.TrimPrefix(argument, prefix))
			continue
		}
		normalized = append(normalized, argument)
	}
	return normalized
}
