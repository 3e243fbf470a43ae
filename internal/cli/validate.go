package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docker/go-units"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/steviee/assetguard/internal/cli/config"
	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/guard"
	"github.com/steviee/assetguard/internal/tui"
)

// ErrIncomplete is returned when a pass finished but some files could not
// be fetched.
var ErrIncomplete = errors.New("validation incomplete")

// eventBuffer is the capacity of the channel feeding the progress view.
const eventBuffer = 256

// ValidateResult is the summary printed after a pass
type ValidateResult struct {
	Server           string   `json:"server"`
	MinecraftVersion string   `json:"minecraftVersion"`
	Downloaded       int      `json:"downloaded"`
	Bytes            int64    `json:"bytes"`
	Failed           []string `json:"failed,omitempty"`
	Forge            string   `json:"forge,omitempty"`
	ModList          string   `json:"modList,omitempty"`
	JavaExec         string   `json:"javaExec,omitempty"`
}

type validateOptions struct {
	serverID string
	runtime  bool
	noTUI    bool
	enable   []string
	disable  []string
}

// selection maps module ids to their requested state. Disabling wins when
// an id is given twice.
func (o validateOptions) selection() map[string]bool {
	if len(o.enable) == 0 && len(o.disable) == 0 {
		return nil
	}
	sel := make(map[string]bool, len(o.enable)+len(o.disable))
	for _, id := range o.enable {
		sel[id] = true
	}
	for _, id := range o.disable {
		sel[id] = false
	}
	return sel
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate [server-id]",
		Short: "Validate and download everything a server needs",
		Long: `Run a full validation pass for a server of the distribution.

Every module, the Minecraft version, its asset objects, libraries and client
jar are checked against their declared checksums. Anything missing or corrupt
is downloaded. For Forge servers the version data is extracted from the Forge
jar, its libraries are fetched and the legacy mod list is written.

Without a server id the main server of the distribution is used.`,
		Example: `  # Validate the main server
  assetguard validate

  # Validate a server and install a Java runtime
  assetguard validate myserver-1.12.2 --runtime

  # Toggle optional mods
  assetguard validate myserver-1.12.2 --enable com.example:minimap:1.0 --disable com.example:shaders:2.1

  # Plain log output, e.g. in CI
  assetguard validate --no-tui`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.serverID = args[0]
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runtime, "runtime", false, "also validate the Java runtime")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "disable the interactive progress view")
	cmd.Flags().StringSliceVar(&opts.enable, "enable", nil, "enable optional modules by id")
	cmd.Flags().StringSliceVar(&opts.disable, "disable", nil, "disable optional modules by id")

	return cmd
}

// useTUI reports whether the progress view should be shown.
func useTUI(stdout io.Writer, opts validateOptions) bool {
	if opts.noTUI || config.JSONMode() || quiet {
		return false
	}
	f, ok := stdout.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func runValidate(ctx context.Context, stdout io.Writer, opts validateOptions) error {
	jsonMode := config.JSONMode()

	cfg, layout, err := config.Load(ctx)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	gc := guard.FromState(cfg, layout)
	gc.Selection = opts.selection()
	gc.Runtime = opts.runtime

	interactive := useTUI(stdout, opts)

	var ch *events.ChannelObserver
	var observer events.Observer
	if interactive {
		ch = events.NewChannelObserver(eventBuffer)
		observer = ch
	} else {
		observer = logObserver(slog.Default())
	}
	if cfg.Downloads.ProgressThrottle {
		observer = events.NewThrottle(observer)
	}
	gc.Observer = observer

	g, err := guard.New(gc)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	var res *guard.Result
	if interactive {
		res, err = runWithProgress(ctx, g, opts.serverID, ch)
	} else {
		res, err = g.ValidateEverything(ctx, opts.serverID)
	}
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	return report(stdout, jsonMode, res)
}

// runWithProgress runs the pass in the background while the progress view
// renders its events. Quitting the view cancels the pass.
func runWithProgress(ctx context.Context, g *guard.AssetGuard, serverID string, ch *events.ChannelObserver) (*guard.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(*tui.NewModel(ch.C, cancel))

	var res *guard.Result
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, runErr = g.ValidateEverything(ctx, serverID)
		close(ch.C)
		p.Send(tui.DoneMsg{Result: res, Err: runErr})
	}()

	_, err := p.Run()
	if err != nil {
		cancel()
	}

	// Unblock the pass if the view stopped reading early.
	for range ch.C {
	}
	<-done

	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	return res, runErr
}

func summarize(res *guard.Result) ValidateResult {
	out := ValidateResult{
		Server:           res.Server.ID,
		MinecraftVersion: res.Server.MinecraftVersion,
		Downloaded:       res.Downloaded(),
		JavaExec:         res.JavaExec,
		ModList:          res.ModListPath,
	}
	for _, s := range res.Summaries {
		out.Bytes += s.Bytes
		out.Failed = append(out.Failed, s.FailedIDs("")...)
	}
	if res.ForgeData != nil {
		out.Forge = res.ForgeData.ID
	}
	return out
}

func report(w io.Writer, jsonMode bool, res *guard.Result) error {
	sum := summarize(res)

	if jsonMode {
		status := "success"
		if len(sum.Failed) > 0 {
			status = "partial"
		}
		if err := writeJSON(w, status, sum); err != nil {
			return err
		}
	} else {
		printSummary(w, sum)
	}

	if len(sum.Failed) > 0 {
		return fmt.Errorf("%w: %d files failed", ErrIncomplete, len(sum.Failed))
	}
	return nil
}

func printSummary(w io.Writer, sum ValidateResult) {
	_, _ = fmt.Fprintf(w, "Server:      %s (Minecraft %s)\n", sum.Server, sum.MinecraftVersion)
	if sum.Downloaded == 0 {
		_, _ = fmt.Fprintln(w, "Downloaded:  nothing, everything is up to date")
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded:  %d files (%s)\n", sum.Downloaded, units.HumanSize(float64(sum.Bytes)))
	}
	if sum.Forge != "" {
		_, _ = fmt.Fprintf(w, "Forge:       %s\n", sum.Forge)
	}
	if sum.ModList != "" {
		_, _ = fmt.Fprintf(w, "Mod list:    %s\n", sum.ModList)
	}
	if sum.JavaExec != "" {
		_, _ = fmt.Fprintf(w, "Java:        %s\n", sum.JavaExec)
	}
	if len(sum.Failed) > 0 {
		_, _ = fmt.Fprintf(w, "\nFailed (%d):\n", len(sum.Failed))
		for _, id := range sum.Failed {
			_, _ = fmt.Fprintf(w, "  - %s\n", id)
		}
	}
}
