package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
	"github.com/srivastavaprakhar/queryFARMER/processor"
	"github.com/srivastavaprakhar/queryFARMER/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the translation HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a.translator, a.cache, server.Config{
				Addr:                 cfg.Addr(),
				MaxRequestsPerMinute: cfg.Server.MaxRequestsPerMinute,
				BatchConcurrency:     cfg.Translation.BatchConcurrency,
				Debug:                cfg.Server.Debug,
			}, slog.Default())

			color.New(color.FgGreen).Fprintf(opts.stderr, "%s listening on http://%s (provider: %s)\n",
				queryfarmer.Name, cfg.Addr(), cfg.Provider.Name)
			return srv.Run(ctx)
		},
	}
}

func newTranslateCommand(opts *rootOptions) *cobra.Command {
	var (
		from       string
		to         string
		file       string
		output     string
		asHTML     bool
		dryRun     bool
		jsonOutput bool
		noPreserve bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text or an HTML document",
		Long: `Translate text given as arguments, read from --file, or read from stdin.
With --html the input is treated as an HTML document and every text node is
translated; --dry-run lists the texts without calling the provider.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, inputName, err := readInput(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}

			out := opts.stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			if asHTML && dryRun {
				return runDryRun(out, input, inputName, to, jsonOutput)
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close()

			if !quiet {
				fmt.Fprintf(opts.stderr, "Translating %s from %s to %s...\n", inputName, from, to)
			}
			start := time.Now()

			if asHTML {
				proc := processor.NewHTMLProcessor().WithConcurrency(cfg.Translation.BatchConcurrency)
				result, err := proc.Translate(cmd.Context(), a.translator, input, from, to)
				if err != nil {
					return fmt.Errorf("translation failed: %w", err)
				}
				elapsed := time.Since(start)
				if jsonOutput {
					return writeJSON(out, htmlOutput{Result: result, ElapsedMs: elapsed.Milliseconds()})
				}
				fmt.Fprint(out, result.Content)
				if !quiet {
					printHTMLStats(opts.stderr, result, elapsed)
				}
				return nil
			}

			result, err := a.translator.Translate(cmd.Context(), queryfarmer.Request{
				Text:           input,
				SourceLang:     from,
				TargetLang:     to,
				PreserveTokens: !noPreserve,
			})
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			if jsonOutput {
				return writeJSON(out, result)
			}
			fmt.Fprintln(out, result.TranslatedText)
			if !quiet {
				printTextStats(opts.stderr, result, time.Since(start))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&from, "from", "en", "Source language code")
	flags.StringVar(&to, "to", "", "Target language code")
	flags.StringVarP(&file, "file", "f", "", "Read input from file")
	flags.StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	flags.BoolVar(&asHTML, "html", false, "Treat input as an HTML document")
	flags.BoolVar(&dryRun, "dry-run", false, "With --html, list translatable texts without calling the provider")
	flags.BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	flags.BoolVar(&noPreserve, "no-preserve", false, "Do not shield placeholders, URLs and numbers")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newShieldCommand(opts *rootOptions) *cobra.Command {
	var (
		file       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "shield [text...]",
		Short: "Show how text is shielded before it reaches a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _, err := readInput(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}

			p := queryfarmer.NewTokenPreserver()
			shielded, tokens := p.Protect(input)

			if jsonOutput {
				return writeJSON(opts.stdout, shieldOutput{Shielded: shielded, Tokens: tokens})
			}

			fmt.Fprintln(opts.stdout, shielded)
			bold := color.New(color.Bold)
			for _, c := range p.Categories() {
				for i, literal := range tokens[c] {
					fmt.Fprintf(opts.stdout, "  %s  %s\n", bold.Sprint(queryfarmer.Marker(c, i)), literal)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read input from file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	return cmd
}

func newLanguagesCommand(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and translation directions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			languages := cfg.LanguageSet()
			if jsonOutput {
				return writeJSON(opts.stdout, languagesOutput{
					Languages: languages.Names(),
					Pairs:     languages.Pairs(),
				})
			}

			pairs := languages.Pairs()
			for _, code := range languages.Codes() {
				targets := pairs[code]
				sort.Strings(targets)
				fmt.Fprintf(opts.stdout, "%-4s %-10s -> %s\n", code, languages.Name(code), strings.Join(targets, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	return cmd
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return writeJSON(opts.stdout, cfg.Summary())
		},
	}
}

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(opts.stdout, "%s %s\n", queryfarmer.Name, queryfarmer.FullVersion())
			if queryfarmer.BuildDate != "" {
				fmt.Fprintf(opts.stdout, "  built:   %s\n", queryfarmer.BuildDate)
			}
		},
	}
}

// readInput returns the text to process and a name for progress output.
func readInput(stdin io.Reader, file string, args []string) (string, string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return "", "", fmt.Errorf("reading file: %w", err)
		}
		return string(data), filepath.Base(file), nil
	case len(args) > 0:
		return strings.Join(args, " "), "text", nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), "stdin", nil
	}
}

type dryRunOutput struct {
	InputFile  string   `json:"input_file"`
	TargetLang string   `json:"target_lang"`
	NodeCount  int      `json:"node_count"`
	Texts      []string `json:"texts"`
}

type htmlOutput struct {
	*processor.Result
	ElapsedMs int64 `json:"elapsed_ms"`
}

type shieldOutput struct {
	Shielded string               `json:"shielded"`
	Tokens   queryfarmer.TokenSet `json:"preserved_tokens"`
}

type languagesOutput struct {
	Languages map[string]string   `json:"languages"`
	Pairs     map[string][]string `json:"pairs"`
}

// runDryRun shows what would be translated without calling the provider.
func runDryRun(w io.Writer, input, inputName, targetLang string, jsonOut bool) error {
	d, err := processor.NewHTMLProcessor().Parse(input)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	texts := make([]string, len(d.Texts()))
	for i, n := range d.Texts() {
		texts[i] = n.Text
	}

	if jsonOut {
		return writeJSON(w, dryRunOutput{
			InputFile:  inputName,
			TargetLang: targetLang,
			NodeCount:  len(texts),
			Texts:      texts,
		})
	}

	fmt.Fprintf(w, "Dry run: %s -> %s\n", inputName, targetLang)
	fmt.Fprintf(w, "Found %d translatable text nodes:\n\n", len(texts))
	for i, text := range texts {
		if r := []rune(text); len(r) > 60 {
			text = string(r[:57]) + "..."
		}
		fmt.Fprintf(w, "%3d. %q\n", i+1, text)
	}
	return nil
}

func printHTMLStats(w io.Writer, result *processor.Result, elapsed time.Duration) {
	fmt.Fprintf(w, "\nDone in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Nodes found:  %d\n", result.TotalNodes)
	fmt.Fprintf(w, "  Translated:   %d\n", result.TranslatedCount)
	if result.FallbackCount > 0 {
		color.New(color.FgYellow).Fprintf(w, "  Fallbacks:    %d\n", result.FallbackCount)
	}
}

func printTextStats(w io.Writer, result *queryfarmer.TranslationResult, elapsed time.Duration) {
	status := color.New(color.FgGreen)
	if result.Fallback {
		status = color.New(color.FgYellow)
	}
	status.Fprintf(w, "Done in %v (confidence %.2f)\n", elapsed.Round(time.Millisecond), result.Confidence)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
