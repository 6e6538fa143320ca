package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pageflow/common"
	"pageflow/config"
	"pageflow/convert"
	"pageflow/state"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:         "render",
		Usage:        "Renders area tree file(s) into paged output",
		OnUsageError: passUsageError,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Value: common.OutputFmtXml.String(),
				Usage: "output `FORMAT` (one of: " + strings.Join(common.OutputFmtNames(), ", ") + ")"},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "place all results directly into destination, ignoring source directory structure"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing results"},
			&cli.StringFlag{Name: "force-zip-cp",
				Usage: "decode non UTF-8 file names in archives using `ENCODING` (IANA character set name)"},
		},
		ArgsUsage: "SOURCE [DESTINATION]",
		CustomHelpTemplate: cli.CommandHelpTemplate + `
SOURCE:
    area tree file, directory or zip archive:
        "[dir/]doc.xml"                       single area tree
        "[dir/]tree"                          every area tree and archive under directory
        "[dir/]pages.zip"                     every area tree in archive
        "[dir/]pages.zip/inner/path[/doc.xml]" area trees under path inside archive

    XML files are recognized by "areaTree" root element, UTF-8/16/32 with BOM
    and XML declared encodings are accepted. Nested archives are not opened.

DESTINATION:
    directory for results (default: current directory). File names come from
    source names or from output name template in configuration.
`,
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Writes default or effective configuration (YAML)",
		OnUsageError: passUsageError,
		Action:       dumpConfig,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "write embedded defaults instead of effective configuration"},
		},
		ArgsUsage: "[DESTINATION]",
		CustomHelpTemplate: cli.CommandHelpTemplate + `
DESTINATION:
    file to write configuration to (default: STDOUT)
`,
	}
}

func dumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
		kind = "effective"
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		env.Log.Info("Writing configuration", zap.String("kind", kind), zap.String("file", "STDOUT"))
		_, err = os.Stdout.Write(data)
	} else {
		env.Log.Info("Writing configuration", zap.String("kind", kind), zap.String("file", fname))
		err = os.WriteFile(fname, data, 0644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
