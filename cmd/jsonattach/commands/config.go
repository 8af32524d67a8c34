package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/jsonattach/pkg/cli"
	"github.com/haivivi/jsonattach/pkg/entity"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage contexts.

A context names where a collection lives: the store backend (local,
memory, badger or s3), the location inside that store, and the codec
used for record files.

Examples:
  jsonattach config add-context dev --dir ./data --collection apps
  jsonattach config add-context prod --store s3 --bucket records --region us-east-1
  jsonattach config use-context dev
  jsonattach config current-context
  jsonattach config set prod s3.endpoint http://localhost:9000
  jsonattach config list-contexts
  jsonattach config view`,
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		names := cfg.ListContexts()
		if len(names) == 0 {
			fmt.Println("No contexts configured.")
			fmt.Println("Create one with: jsonattach config add-context <name>")
			return nil
		}

		tbl := cli.NewTable("CURRENT", "NAME", "STORE", "LOCATION", "CODEC")
		for _, name := range names {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			codec := ctx.Codec
			if codec == "" {
				codec = "json"
			}
			tbl.Append(current, name, ctx.StoreKind(), location(ctx), codec)
		}
		return tbl.Render(os.Stdout)
	},
}

// location describes where a context's collection lives.
func location(ctx *cli.Context) string {
	var base string
	switch ctx.StoreKind() {
	case cli.StoreS3:
		if ctx.S3 != nil {
			base = "s3://" + ctx.S3.Bucket
			if ctx.S3.Prefix != "" {
				base += "/" + ctx.S3.Prefix
			}
		}
	case cli.StoreMemory:
		base = "(memory)"
	default:
		base = ctx.Dir
		if base == "" {
			base = "(default)"
		}
	}
	if ctx.Collection != "" {
		base += " [" + ctx.Collection + "]"
	}
	return base
}

var addContext struct {
	store      string
	collection string
	bucket     string
	prefix     string
	region     string
	endpoint   string
	pathStyle  bool
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Create or replace a context",
	Long: `Create or replace a context.

The global --dir flag sets the local root or the badger database
directory, and --codec sets the record codec.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]

		// --dir and --codec are the global flags.
		if _, err := entity.CodecByName(codecFlag); err != nil {
			return err
		}
		ctx := &cli.Context{
			Store:      addContext.store,
			Dir:        dirFlag,
			Collection: addContext.collection,
			Codec:      codecFlag,
		}
		if addContext.bucket != "" || ctx.StoreKind() == cli.StoreS3 {
			ctx.S3 = &cli.S3Settings{
				Bucket: addContext.bucket,
				Prefix: addContext.prefix,
			}
			ctx.S3.Region = addContext.region
			ctx.S3.Endpoint = addContext.endpoint
			ctx.S3.PathStyle = addContext.pathStyle
		}

		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}
		fmt.Printf("Context %q created.\n", name)
		if cfg.CurrentContext == "" {
			fmt.Printf("Make it current with: jsonattach config use-context %s\n", name)
		}
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Long:  "Delete a context. The documents in its store are left untouched.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]

		if err := cfg.DeleteContext(name); err != nil {
			return err
		}
		fmt.Printf("Context %q deleted.\n", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]

		if err := cfg.UseContext(name); err != nil {
			return err
		}
		fmt.Printf("Switched to context %q.\n", name)
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Print the current context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			return fmt.Errorf("no current context set")
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <context> <key> <value>",
	Short: "Set a context setting",
	Long: `Set a context setting.

Keys: store, dir, collection, codec, s3.bucket, s3.prefix, s3.region,
s3.endpoint, s3.access_key_id, s3.secret_access_key, s3.session_token,
s3.path_style. Other keys are kept as free-form extras.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name, key, value := args[0], args[1], args[2]

		ctx, err := cfg.GetContext(name)
		if err != nil {
			return err
		}
		if key == "codec" {
			if _, err := entity.CodecByName(value); err != nil {
				return err
			}
		}
		if err := ctx.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Set %s on context %q.\n", key, name)
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		view := struct {
			Path           string                  `yaml:"path"`
			CurrentContext string                  `yaml:"current_context,omitempty"`
			Contexts       map[string]*cli.Context `yaml:"contexts,omitempty"`
		}{
			Path:           cfg.Path(),
			CurrentContext: cfg.CurrentContext,
			Contexts:       make(map[string]*cli.Context, len(cfg.Contexts)),
		}
		for name, ctx := range cfg.Contexts {
			masked := *ctx
			if ctx.S3 != nil {
				s3 := *ctx.S3
				s3.SecretAccessKey = cli.MaskSecret(s3.SecretAccessKey)
				s3.SessionToken = cli.MaskSecret(s3.SessionToken)
				masked.S3 = &s3
			}
			view.Contexts[name] = &masked
		}
		return cli.Output(view, cli.OutputOptions{Format: cli.FormatYAML})
	},
}

func init() {
	f := configAddContextCmd.Flags()
	f.StringVar(&addContext.store, "store", "", "store backend: local (default), memory, badger or s3")
	f.StringVar(&addContext.collection, "collection", "", "collection directory inside the store")
	f.StringVar(&addContext.bucket, "bucket", "", "S3 bucket")
	f.StringVar(&addContext.prefix, "prefix", "", "S3 key prefix")
	f.StringVar(&addContext.region, "region", "", "S3 region")
	f.StringVar(&addContext.endpoint, "endpoint", "", "S3 endpoint for S3-compatible stores")
	f.BoolVar(&addContext.pathStyle, "path-style", false, "use path-style S3 addressing")

	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configCurrentContextCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configViewCmd)
	rootCmd.AddCommand(configCmd)
}
