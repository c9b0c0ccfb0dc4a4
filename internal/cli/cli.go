package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Collect *CollectCommand
	Plot    *PlotCommand
	Summary *SummaryCommand
	Status  *StatusCommand
	Purge   *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	// main reports errors itself, so go-flags only prints help.
	parser := goflags.NewParser(&globals, goflags.HelpFlag|goflags.PassDoubleDash)
	parser.Name = "subplot"
	parser.LongDescription = "Collect a forum's submissions for one year and chart when they were posted."

	cmds := &commands{
		Collect: &CollectCommand{globals: &globals, version: version},
		Plot:    &PlotCommand{globals: &globals, version: version},
		Summary: &SummaryCommand{globals: &globals, version: version},
		Status:  &StatusCommand{globals: &globals, version: version},
		Purge:   &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("collect", "Download a year of submissions", "Download every submission of the forum for the year into {forum}-{year}.csv.", cmds.Collect)
	parser.AddCommand("plot", "Render the distribution charts", "Render the calendar, radar, bar and donut charts (1.png to 4.png) from the collected CSV.", cmds.Plot)
	parser.AddCommand("summary", "Print one bucketed series", "Bucketize the collected CSV by date, hour, month or weekday and print the counts and statistics.", cmds.Summary)
	parser.AddCommand("status", "Show collected datasets and charts", "Show the catalog of collected datasets, rendered charts, and configuration summary.", cmds.Status)
	parser.AddCommand("purge", "Clear the catalog", "Delete every catalog entry. CSV and PNG files are kept. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the subplot CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("subplot %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				fmt.Println(flagsErr.Message)
				return nil
			}
		}
		return err
	}

	return nil
}
