package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlcond/dialect"
)

// DialectInfo describes a dialect profile.
type DialectInfo struct {
	Name         string   `json:"name"`
	Quote        string   `json:"quote"`
	Capabilities []string `json:"capabilities"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the supported dialects and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			infos := dialectInfos()
			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			var b strings.Builder
			tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tQUOTE\tCAPABILITIES")
			for _, info := range infos {
				caps := strings.Join(info.Capabilities, ",")
				if caps == "" {
					caps = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Quote, caps)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return formatter.Success(strings.TrimSuffix(b.String(), "\n"))
		},
	}
}

func dialectInfos() []DialectInfo {
	names := dialect.Names()
	infos := make([]DialectInfo, len(names))
	for i, name := range names {
		p := dialect.MustGet(name)
		caps := p.Capabilities()
		if caps == nil {
			caps = []string{}
		}
		infos[i] = DialectInfo{Name: name, Quote: p.Quote("id"), Capabilities: caps}
	}
	return infos
}
