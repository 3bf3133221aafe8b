package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/epuerta/applypatch/internal/config"
	"github.com/epuerta/applypatch/internal/fileops"
	"github.com/epuerta/applypatch/internal/logging"
	"github.com/epuerta/applypatch/internal/patch"
	"github.com/epuerta/applypatch/internal/ui"
)

var (
	// Version is set during build
	Version = "dev"
	// GitCommit is set during build
	GitCommit = "none"
	// BuildDate is set during build
	BuildDate = "unknown"

	// Logger instance - global within main package for simplicity
	appLogger logging.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "applypatch [flags]",
	Short: "Apply context-anchored patches to files",
	Long: `Applypatch reads a patch in the '*** Begin Patch' format from standard
input (or a file) and applies it to the working directory. Hunks are located
by fuzzy context matching rather than line numbers, so patches survive minor
drift in the target files.

Examples:
  applypatch < changes.patch
  applypatch --file changes.patch --dir ./project
  git stash && applypatch --yes < changes.patch`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runApply(cmd)
	},
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "", "Read the patch from a file instead of stdin")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Apply the patch inside this directory (default: current directory)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Preview the changes without touching the filesystem")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Apply without asking for confirmation")

	// Logging flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to a file")
	rootCmd.PersistentFlags().String("log-file", "", "Path to the log file (default: <user cache dir>/applypatch/logs/applypatch-<timestamp>.log)")

	rootCmd.AddCommand(completionCmd())
}

// completionCmd creates the completion command for shell completion scripts
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				cmd.Root().GenFishCompletion(os.Stdout, true)
			}
		},
	}
	return cmd
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	if appLogger != nil {
		appLogger.Log("error: %v", err)
		appLogger.Close()
	}
	os.Exit(1)
}

func runApply(cmd *cobra.Command) {
	fileFlag, _ := cmd.Flags().GetString("file")
	dirFlag, _ := cmd.Flags().GetString("dir")
	dryRunFlag, _ := cmd.Flags().GetBool("dry-run")
	yesFlag, _ := cmd.Flags().GetBool("yes")
	debugFlag, _ := cmd.Flags().GetBool("debug")
	logFileFlag, _ := cmd.Flags().GetString("log-file")

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	// Flags override the config file.
	if dirFlag != "" {
		cfg.Dir = dirFlag
	}
	if dryRunFlag {
		cfg.DryRun = true
	}
	if yesFlag {
		cfg.ApprovalMode = config.AutoApply
	}
	if debugFlag {
		cfg.Debug = true
	}
	if logFileFlag != "" {
		cfg.LogFile = logFileFlag
	}

	// --- Initialize Logger FIRST ---
	if cfg.Debug {
		logPath := cfg.LogFile
		if logPath == "" {
			logPath = logging.DefaultLogPath()
		}
		fileLogger, err := logging.NewFileLogger(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to initialize file logger: %v. Logging disabled.\n", err)
			appLogger = logging.NewNilLogger()
		} else {
			appLogger = fileLogger
			fmt.Fprintf(os.Stderr, "Debug logging enabled to: %s\n", logPath)
		}
	} else {
		appLogger = logging.NewNilLogger()
	}
	defer appLogger.Close()

	runID := uuid.New().String()[:8]
	appLogger.Log("[%s] applypatch starting, dir=%s dry-run=%v", runID, cfg.Dir, cfg.DryRun)

	text, err := readPatchText(fileFlag)
	if err != nil {
		fail(err)
	}
	if text == "" {
		fail(fmt.Errorf("no patch text provided on stdin"))
	}

	fs := fileops.New(cfg.Dir)

	commit, fuzz, err := resolvePatch(text, fs)
	if err != nil {
		fail(err)
	}
	appLogger.Log("[%s] parsed patch: %s, fuzz=%d", runID, ui.Summarize(commit), fuzz)

	if cfg.DryRun {
		fmt.Print(ui.RenderCommit(commit))
		fmt.Println("Dry run, nothing applied.")
		return
	}

	if cfg.ApprovalMode == config.Suggest {
		approved, err := ui.ConfirmApply(ui.Summarize(commit), ui.RenderCommit(commit))
		if err != nil {
			fail(err)
		}
		if !approved {
			appLogger.Log("[%s] user aborted", runID)
			fmt.Println("Aborted.")
			return
		}
	}

	if err := patch.ApplyCommit(commit, fs); err != nil {
		fail(err)
	}

	appLogger.Log("[%s] applied %d file(s)", runID, len(commit.Order))
	fmt.Println("Done!")
}

// resolvePatch runs the read-only half of the pipeline: pre-scan, load,
// parse, and commit building. Nothing is written to the filesystem.
func resolvePatch(text string, fs patch.FileSystem) (*patch.Commit, int, error) {
	if !strings.HasPrefix(text, patch.PatchBeginMarker) {
		return nil, 0, &patch.DiffError{Message: fmt.Sprintf("patch text must start with %s", patch.PatchBeginMarker)}
	}

	paths := patch.IdentifyFilesNeeded(text)
	orig, err := patch.LoadFiles(paths, fs)
	if err != nil {
		return nil, 0, err
	}

	p, fuzz, err := patch.TextToPatch(text, orig)
	if err != nil {
		return nil, 0, err
	}

	commit, err := patch.PatchToCommit(p, orig)
	if err != nil {
		return nil, 0, err
	}

	return commit, fuzz, nil
}

func readPatchText(file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("error reading patch file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("error reading patch from stdin: %w", err)
	}
	return string(data), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
