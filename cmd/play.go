package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dannbuckley/intcode/ascii"
	"github.com/dannbuckley/intcode/vm"
	"github.com/spf13/cobra"
)

const ScriptKey = "script"

func playCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "play <program>",
		Short: "Runs an ASCII program interactively",
		Long: "Runs an ASCII program interactively, one command per line of standard input. " +
			"With --script, sends the lines of the script file at once instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			program, err := loadProgram(args)
			if err != nil {
				return err
			}
			script, err := c.Flags().GetString(ScriptKey)
			if err != nil {
				return err
			}
			console := ascii.NewConsole(vm.NewVM(program, nil, a.vmOpts()...), ascii.LoggerOpt(a.logger))
			if script != "" {
				return playScript(c, console, script)
			}
			return play(c, console)
		},
	}
	c.Flags().String(ScriptKey, "", "File whose lines are sent as one script")
	return c
}

func play(c *cobra.Command, console *ascii.Console) error {
	w := c.OutOrStdout()
	text, status, err := console.Exec("")
	fmt.Fprint(w, text)
	printValues(c, console)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(c.InOrStdin())
	for status != vm.StatusHalted && scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		text, status, err = console.Exec(line)
		fmt.Fprint(w, text)
		printValues(c, console)
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}

func playScript(c *cobra.Command, console *ascii.Console, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	// the prompt comes before the program reads the script
	text, _, err := console.Exec("")
	if err != nil {
		return err
	}
	fmt.Fprint(c.OutOrStdout(), text)

	text, _, err = console.Script(lines...)
	fmt.Fprint(c.OutOrStdout(), text)
	printValues(c, console)
	return err
}

func printValues(c *cobra.Command, console *ascii.Console) {
	for _, v := range console.Values() {
		fmt.Fprintln(c.OutOrStdout(), v)
	}
}
