// Package cli defines the splconfig command grammar. Parse only validates and
// records an invocation; app executes it.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rbright/splconfig/internal/profile"
	"github.com/rbright/splconfig/internal/trigger"
	"github.com/spf13/cobra"
)

type Command string

const (
	CommandRun            Command = "run"
	CommandStatus         Command = "status"
	CommandSwitch         Command = "switch"
	CommandSelect         Command = "select"
	CommandProfiles       Command = "profiles list"
	CommandProfileNew     Command = "profiles new"
	CommandProfileRename  Command = "profiles rename"
	CommandProfileDelete  Command = "profiles delete"
	CommandProfileReset   Command = "profiles reset"
	CommandInstantSet     Command = "instant set"
	CommandInstantClear   Command = "instant clear"
	CommandTriggers       Command = "trigger list"
	CommandTriggerSet     Command = "trigger set"
	CommandTriggerClear   Command = "trigger clear"
	CommandTriggerNext    Command = "trigger next"
	CommandSettings       Command = "setting list"
	CommandSettingGet     Command = "setting get"
	CommandSettingSet     Command = "setting set"
	CommandAlarms         Command = "alarms"
	CommandCommentGet     Command = "comment get"
	CommandCommentSet     Command = "comment set"
	CommandCommentClear   Command = "comment clear"
	CommandCommentFocused Command = "comment focused"
	CommandSinks          Command = "sinks"
	CommandDoctor         Command = "doctor"
	CommandVersion        Command = "version"
	CommandHelp           Command = "help"
)

// Parsed is one validated invocation.
type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	Help       string

	// Args holds the positional arguments of Command.
	Args []string

	CopyFrom string
	Days     trigger.Weekdays
	Hour     int
	Minute   int
	Duration int
	Field    profile.Field
	Value    string
}

// Arg returns positional argument i or "".
func (p Parsed) Arg(i int) string {
	if i < len(p.Args) {
		return p.Args[i]
	}
	return ""
}

// Parse validates args against the command tree.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	root := newRoot(&parsed)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return Parsed{}, err
	}
	return parsed, nil
}

// HelpText renders top-level usage for binaryName.
func HelpText(binaryName string) string {
	root := newRoot(&Parsed{})
	root.Use = binaryName
	return root.UsageString()
}

func newRoot(parsed *Parsed) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "splconfig",
		Short: "Broadcast profile configuration for the studio screen reader add-on",
		Long: `splconfig manages broadcast profiles: named sets of studio announcement
settings that can be switched instantly or on a weekly schedule.`,
		Args: noArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if showVersion {
				parsed.Command = CommandVersion
				parsed.ShowHelp = false
				return
			}
			showHelp(parsed, cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) { showHelp(parsed, cmd) })
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return err })

	root.PersistentFlags().StringVar(&parsed.ConfigPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/splconfig/config.toml)")
	root.Flags().BoolVar(&showVersion, "version", false, "show version")

	root.AddCommand(
		leaf(parsed, CommandRun, "run", "Run the resident session: triggers, instant switch, and IPC", noArgs),
		leaf(parsed, CommandStatus, "status", "Print the switch state of the resident session", noArgs),
		leaf(parsed, CommandSwitch, "switch", "Toggle the instant switch profile in the resident session", noArgs),
		leaf(parsed, CommandSelect, "select NAME", "Make NAME the active profile in the resident session", exactArgs(1)),
		profilesCommand(parsed),
		instantCommand(parsed),
		triggerCommand(parsed),
		settingCommand(parsed),
		leaf(parsed, CommandAlarms, "alarms", "Edit alarm settings interactively", noArgs),
		commentCommand(parsed),
		leaf(parsed, CommandSinks, "sinks", "List audio output devices available for tones", noArgs),
		leaf(parsed, CommandDoctor, "doctor", "Run configuration and environment checks", noArgs),
		leaf(parsed, CommandVersion, "version", "Print version information", noArgs),
	)
	return root
}

func profilesCommand(parsed *Parsed) *cobra.Command {
	group := &cobra.Command{Use: "profiles", Short: "List and manage broadcast profiles", Args: noArgs}

	list := leaf(parsed, CommandProfiles, "list", "List profiles in pool order", noArgs)
	list.Aliases = []string{"ls"}

	create := leaf(parsed, CommandProfileNew, "new NAME", "Create a broadcast profile", exactArgs(1))
	create.Flags().StringVar(&parsed.CopyFrom, "copy-from", "", "copy settings from this profile instead of defaults")

	group.AddCommand(
		list,
		create,
		leaf(parsed, CommandProfileRename, "rename OLD NEW", "Rename a broadcast profile", exactArgs(2)),
		leaf(parsed, CommandProfileDelete, "delete NAME", "Delete a broadcast profile and its file", exactArgs(1)),
		leaf(parsed, CommandProfileReset, "reset NAME", "Reset a profile to defaults", exactArgs(1)),
	)
	return group
}

func instantCommand(parsed *Parsed) *cobra.Command {
	group := &cobra.Command{Use: "instant", Short: "Designate the instant switch profile", Args: noArgs}
	group.AddCommand(
		leaf(parsed, CommandInstantSet, "set NAME", "Designate NAME as the instant switch profile", exactArgs(1)),
		leaf(parsed, CommandInstantClear, "clear", "Remove the instant switch designation", noArgs),
	)
	return group
}

func triggerCommand(parsed *Parsed) *cobra.Command {
	group := &cobra.Command{Use: "trigger", Short: "Manage time-based profile triggers", Args: noArgs}

	var days, at string
	set := leaf(parsed, CommandTriggerSet, "set NAME", "Switch to NAME on the given days and time", exactArgs(1))
	set.Flags().StringVar(&days, "days", "all", `weekdays such as "mon,wed,fri" or "all"`)
	set.Flags().StringVar(&at, "at", "", "start time as HH:MM")
	set.Flags().IntVar(&parsed.Duration, "duration", 0, "minutes before returning to the previous profile; 0 stays")
	set.PreRunE = func(*cobra.Command, []string) error {
		w, err := trigger.ParseWeekdays(days)
		if err != nil {
			return err
		}
		hour, minute, err := parseClock(at)
		if err != nil {
			return err
		}
		if parsed.Duration < 0 {
			return fmt.Errorf("--duration must not be negative")
		}
		parsed.Days, parsed.Hour, parsed.Minute = w, hour, minute
		return nil
	}

	list := leaf(parsed, CommandTriggers, "list", "List scheduled triggers", noArgs)
	list.Aliases = []string{"ls"}

	group.AddCommand(
		list,
		set,
		leaf(parsed, CommandTriggerClear, "clear NAME", "Remove the trigger of NAME", exactArgs(1)),
		leaf(parsed, CommandTriggerNext, "next", "Show the next scheduled profile switch", noArgs),
	)
	return group
}

func settingCommand(parsed *Parsed) *cobra.Command {
	group := &cobra.Command{Use: "setting", Short: "Read and change settings of the active profile", Args: noArgs}

	get := leaf(parsed, CommandSettingGet, "get SECTION/NAME", "Print one setting", exactArgs(1))
	get.PreRunE = func(_ *cobra.Command, args []string) error {
		f, err := profile.ParseField(args[0])
		parsed.Field = f
		return err
	}

	set := leaf(parsed, CommandSettingSet, "set SECTION/NAME VALUE", "Change one setting; lists are comma separated", exactArgs(2))
	set.PreRunE = func(_ *cobra.Command, args []string) error {
		f, err := profile.ParseField(args[0])
		parsed.Field, parsed.Value = f, args[1]
		return err
	}

	group.AddCommand(
		leaf(parsed, CommandSettings, "list", "Print every setting", noArgs),
		get,
		set,
	)
	return group
}

func commentCommand(parsed *Parsed) *cobra.Command {
	group := &cobra.Command{Use: "comment", Short: "Manage track comments", Args: noArgs}
	group.AddCommand(
		leaf(parsed, CommandCommentGet, "get FILE", "Print the comment for a track file", exactArgs(1)),
		leaf(parsed, CommandCommentSet, "set FILE TEXT", "Store a comment for a track file", exactArgs(2)),
		leaf(parsed, CommandCommentClear, "clear FILE", "Remove the comment for a track file", exactArgs(1)),
		leaf(parsed, CommandCommentFocused, "focused", "Print the comment for the focused track", noArgs),
	)
	return group
}

func leaf(parsed *Parsed, command Command, use, short string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		Run: func(_ *cobra.Command, positional []string) {
			parsed.Command = command
			parsed.ShowHelp = false
			parsed.Args = positional
		},
	}
}

func showHelp(parsed *Parsed, cmd *cobra.Command) {
	parsed.Command = CommandHelp
	parsed.ShowHelp = true
	parsed.Help = cmd.UsageString()
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if cmd.HasSubCommands() {
		return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return fmt.Errorf("unexpected arguments after command %q", cmd.CommandPath())
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) < n:
			return fmt.Errorf("%q requires %d argument(s)", cmd.CommandPath(), n)
		case len(args) > n:
			return fmt.Errorf("unexpected arguments after command %q", cmd.CommandPath())
		}
		return nil
	}
}

// parseClock reads a 24-hour HH:MM time.
func parseClock(raw string) (int, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, errors.New("--at is required")
	}
	h, m, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, 0, fmt.Errorf("--at %q must be HH:MM", raw)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("--at %q has an invalid hour", raw)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("--at %q has an invalid minute", raw)
	}
	return hour, minute, nil
}
