// Package slackscan builds the command line interface around a Cli struct
// holding environment and settings.
package slackscan

import (
	"errors"
	"fmt"

	"github.com/amadigan/slackscan/internal/applog"
	"github.com/amadigan/slackscan/internal/block"
	"github.com/amadigan/slackscan/internal/config"
	"github.com/amadigan/slackscan/internal/report"
	"github.com/amadigan/slackscan/internal/scan"
	"github.com/amadigan/slackscan/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var log = applog.New("slackscan-cli")

type Cli struct {
	Home       string
	SearchPath string
	Settings   *config.Settings
	Env        map[string]string

	device    string
	file      string
	verbose   bool
	extract   bool
	partition int
	jsonOut   bool
	logLevel  levelValue
}

// levelValue parses --log-level as it is set, so a bad value fails before
// any scan starts.
type levelValue struct {
	level applog.LogLevel
	set   bool
}

var _ pflag.Value = &levelValue{}

func (v *levelValue) String() string {
	if !v.set {
		return ""
	}

	return v.level.String()
}

func (v *levelValue) Set(s string) error {
	level, err := applog.ParseLevel(s)
	if err != nil {
		return err
	}

	v.level = level
	v.set = true

	return nil
}

func (v *levelValue) Type() string {
	return "level"
}

func NewRootCommand(cli *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "slackscan",
		Short:         "Measure slack space on ext2 family filesystems",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cli.device, "device", "d", "", "device or image to scan (e.g. /dev/sda1)")
	flags.StringVarP(&cli.file, "file", "f", "", "file to scan")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "print per-inode slack records")
	flags.BoolVarP(&cli.extract, "extract", "x", false, "dump slack contents of the file (-f)")
	flags.IntVarP(&cli.partition, "partition", "p", 0, "partition of the device to scan (default: whole device)")
	flags.BoolVar(&cli.jsonOut, "json", false, "emit records and summaries as JSON")
	flags.Var(&cli.logLevel, "log-level", "log threshold (debug, info, warn, error, off)")
	flags.StringVarP(&cli.Home, "home", "H", "", "slackscan home directory")

	return cmd
}

func (c *Cli) setup() error {
	env := util.Env()

	settings, home, err := config.LoadSettings(env, c.Home)
	if err != nil {
		return err
	}

	c.Home = home
	c.SearchPath = env[config.HomeEnv]
	c.Settings = settings
	c.Env = env

	if !c.logLevel.set && settings.LogLevel != "" {
		if err := c.logLevel.Set(settings.LogLevel); err != nil {
			return fmt.Errorf("failed to apply log_level from settings: %w", err)
		}
	}

	if c.logLevel.set {
		applog.SetLogHandler(applog.NewDefaultHandler(c.logLevel.level))
	}

	return nil
}

func (c *Cli) run(cmd *cobra.Command) error {
	if c.device == "" && c.file == "" {
		return errors.New("no device or file specified")
	}

	if err := c.setup(); err != nil {
		return err
	}

	if !cmd.Flags().Changed("json") && c.Settings.JSON {
		c.jsonOut = true
	}

	rep := report.NewReporter(cmd.OutOrStdout(), c.jsonOut)

	if c.device != "" {
		if err := c.scanDevice(rep); err != nil {
			return err
		}
	}

	if c.file != "" {
		if err := c.scanFile(rep); err != nil {
			return err
		}
	}

	return nil
}

func (c *Cli) scanDevice(rep *report.Reporter) error {
	rep.Banner(c.device)

	src, err := block.Open(c.device, c.partition)
	if err != nil {
		return err
	}
	defer src.Close()

	sum, err := scan.Device(src, c.device, rep, c.verbose)
	if err != nil {
		return err
	}

	return rep.Summary(sum)
}

func (c *Cli) scanFile(rep *report.Reporter) error {
	sum, err := scan.File(c.file, c.Settings.PartitionsPath(c.Env), rep, c.verbose)
	if err != nil {
		return err
	}

	if err := rep.Summary(sum); err != nil {
		return err
	}

	if c.extract {
		log.Warn("slack space extraction is not yet supported")
	}

	return nil
}
