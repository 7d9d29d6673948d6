package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/Arthur1/cachejax"
	"github.com/Arthur1/cachejax/model"
	"github.com/Arthur1/cachejax/transport/httptransport"
)

type getFlags struct {
	configPath string
	modelPath  string
	params     []string
	extra      []string
	force      bool
	root       string
	noRoot     bool
	token      string
	baseURL    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cachejax",
		Short:        "Read resources from a local model, fetching them when missing",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newGetCmd())
	return rootCmd
}

func newGetCmd() *cobra.Command {
	f := &getFlags{}
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Resolve a logical path from the model or the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, f, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to YAML path configuration")
	cmd.Flags().StringVarP(&f.modelPath, "model", "m", "", "Path to a JSON document keyed by logical path")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "Filter/template parameter key=value; the first one filters the model")
	cmd.Flags().StringArrayVarP(&f.extra, "extra", "e", nil, "Extra parameter key=value sent with the request")
	cmd.Flags().BoolVar(&f.force, "force", false, "Skip the model and always fetch")
	cmd.Flags().StringVar(&f.root, "root", "", "Override the root key")
	cmd.Flags().BoolVar(&f.noRoot, "no-root", false, "Return data without a root key")
	cmd.Flags().StringVar(&f.token, "token", "", "Bearer token sent with requests")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Base URL for relative mappings")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log cache decisions")
	cmd.MarkFlagsMutuallyExclusive("root", "no-root")
	return cmd
}

func runGet(cmd *cobra.Command, f *getFlags, path string) error {
	config := cachejax.Config{}
	if f.configPath != "" {
		c, err := cachejax.LoadConfig(f.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		config = c
	}

	m := model.Map{}
	if f.modelPath != "" {
		b, err := os.ReadFile(f.modelPath)
		if err != nil {
			return fmt.Errorf("failed to read model: %w", err)
		}
		v, err := oj.Parse(b)
		if err != nil {
			return fmt.Errorf("failed to parse model: %w", err)
		}
		doc, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("model must be a JSON object keyed by path")
		}
		m = model.Map(doc)
	}

	params, err := parseParams(f.params)
	if err != nil {
		return err
	}
	extra, err := parseParams(f.extra)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var tOpts []httptransport.Option
	tOpts = append(tOpts, httptransport.WithLogger(logger))
	if f.baseURL != "" {
		u, err := url.Parse(f.baseURL)
		if err != nil {
			return fmt.Errorf("invalid base url: %w", err)
		}
		tOpts = append(tOpts, httptransport.WithBaseURL(u))
	}

	client := cachejax.New(m, config, httptransport.New(tOpts...), cachejax.WithLogger(logger))
	if f.token != "" {
		client.SetAuthorization(f.token)
	}

	var getOpts []cachejax.GetOption
	if f.force {
		getOpts = append(getOpts, cachejax.ForceFetch())
	}
	switch {
	case f.noRoot:
		getOpts = append(getOpts, cachejax.WithRoot(cachejax.NoRoot()))
	case f.root != "":
		getOpts = append(getOpts, cachejax.WithRoot(cachejax.RootKey(f.root)))
	}
	if len(extra) > 0 {
		getOpts = append(getOpts, cachejax.WithExtraParams(extra.Map()))
	}

	res, err := client.Get(cmd.Context(), path, params, getOpts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(res.Data, &oj.Options{Indent: 2, Sort: true}))
	return nil
}

// parseParams keeps flag order. Values that parse as JSON scalars keep their
// type, so "--param id=2" filters on the number 2.
func parseParams(raw []string) (cachejax.Params, error) {
	params := make(cachejax.Params, 0, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", kv)
		}
		var value any = v
		if parsed, err := oj.ParseString(v); err == nil {
			switch parsed.(type) {
			case int64, float64, bool:
				value = parsed
			}
		}
		params = append(params, cachejax.Param{Key: k, Value: value})
	}
	return params, nil
}
