// nolint:errcheck
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	titleStyle       = color.New(color.Bold, color.FgHiWhite)
	commandStyle     = color.New(color.FgHiGreen)
	descriptionStyle = color.New(color.FgHiCyan)
	exampleStyle     = color.New(color.FgHiCyan)
	flagStyle        = color.New(color.Bold, color.FgHiCyan)
	tipStyle         = color.New(color.FgHiYellow)
)

const projectURL = "https://github.com/Hanaasagi/filterlines"

var HelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}` + titleStyle.Sprintf("Project:") + color.New(color.FgYellow).Sprintln(
	"	"+projectURL,
)

func rpad(s string, padding int) string {
	return fmt.Sprintf("%-*s", padding, s)
}

func trimRightSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

var (
	reWithShort = regexp.MustCompile(`^( {2,})(-[a-zA-Z]), (--[a-zA-Z0-9-]+)(.*)$`)
	reLongOnly  = regexp.MustCompile(`^( {2,})(--[a-zA-Z0-9-]+)(.*)$`)
)

// colorFlags highlights the flag names of a pflag usage listing
func colorFlags(raw string) []byte {
	var out bytes.Buffer

	for _, line := range strings.Split(raw, "\n") {
		if m := reWithShort.FindStringSubmatch(line); m != nil {
			out.WriteString(m[1])
			flagStyle.Fprint(&out, m[2])
			out.WriteString(", " + m[3] + m[4])
		} else if m := reLongOnly.FindStringSubmatch(line); m != nil {
			out.WriteString(m[1])
			flagStyle.Fprint(&out, m[2])
			out.WriteString(m[3])
		} else {
			out.WriteString(line)
		}
		out.WriteByte('\n')
	}

	return bytes.TrimSuffix(out.Bytes(), []byte("\n"))
}

func section(buf *bytes.Buffer, title string) {
	buf.WriteString("\n\n")
	titleStyle.Fprint(buf, title)
}

// ColorUsageFunc writes the usage of cmd with colored sections
func ColorUsageFunc(w io.Writer, cmd *cobra.Command) error {
	buf := &bytes.Buffer{}

	titleStyle.Fprint(buf, "Usage:")
	if cmd.Runnable() {
		buf.WriteString("\n  ")
		commandStyle.Fprint(buf, cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		buf.WriteString("\n  ")
		commandStyle.Fprintf(buf, "%s [command]", cmd.CommandPath())
	}

	if cmd.HasExample() {
		section(buf, "Examples:")
		buf.WriteString("\n")
		exampleStyle.Fprint(buf, cmd.Example)
	}

	if cmd.HasAvailableSubCommands() {
		section(buf, "Commands:")
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() && sub.Name() != "help" {
				continue
			}
			buf.WriteString("\n  ")
			commandStyle.Fprint(buf, rpad(sub.Name(), sub.NamePadding()))
			buf.WriteString(" ")
			descriptionStyle.Fprint(buf, sub.Short)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		section(buf, "Flags:")
		buf.WriteString("\n")
		buf.Write(colorFlags(trimRightSpace(cmd.LocalFlags().FlagUsages())))
	}

	if cmd.HasAvailableInheritedFlags() {
		section(buf, "Global Flags:")
		buf.WriteString("\n")
		buf.Write(colorFlags(trimRightSpace(cmd.InheritedFlags().FlagUsages())))
	}

	if cmd.HasAvailableSubCommands() {
		buf.WriteString("\n\n")
		tipStyle.Fprintf(buf, "Use \"%s [command] --help\" for more information about a command.", cmd.CommandPath())
	}

	buf.WriteString("\n")

	_, err := w.Write(buf.Bytes())
	return err
}
