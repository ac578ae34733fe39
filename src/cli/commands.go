package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tsserver-gateway/src/config"
	"tsserver-gateway/src/internal/common"
	versionpkg "tsserver-gateway/src/internal/version"
)

// CLI Constants
const (
	CmdServer  = "server"
	CmdVersion = "version"
	FlagConfig = "config"
)

// CLI Variables
var (
	configPath string
	verbose    bool
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "tsserver-gateway",
	Short: "tsserver-gateway - an editor completion gateway for tsserver-style backends",
	Long: `tsserver-gateway bridges a TypeScript-server-style backend to editor tooling.

It launches the backend over STDIO, negotiates its protocol version, and
exposes an LSP-typed completion surface: trigger gating, list assembly,
entry filtering, lazy per-item resolution, auto-import code actions, and
function-call snippet expansion.

QUICK START:
  tsserver-gateway server                  # Launch the backend and serve completions
  tsserver-gateway server --config my.yaml # Use a custom configuration

CONFIGURATION:
  The YAML config selects the backend command line and the per-language
  suggest flags (completeFunctionCalls, names, paths, autoImports,
  importStatements). Without a config file the gateway launches "tsserver"
  with defaults.

Use 'tsserver-gateway <command> --help' for detailed command information.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	serverCmd = &cobra.Command{
		Use:   CmdServer,
		Short: "Launch the backend and serve completions",
		Long: `Launch the configured backend process and keep the completion gateway
running until interrupted. The backend's protocol version is negotiated at
startup and drives the version-dependent completion behavior.`,
		RunE: runServerCmd,
	}

	versionCmd = &cobra.Command{
		Use:   CmdVersion,
		Short: "Show version information",
		Long: `Display version information for tsserver-gateway.

By default, shows only the version number. Use --verbose for detailed build
information including commit hash, build date, and Go version.`,
		RunE: runVersionCmd,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, FlagConfig, "c", "", "config file path")
	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed build information")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runServerCmd(cmd *cobra.Command, args []string) error {
	return RunServer(configPath)
}

func runVersionCmd(cmd *cobra.Command, args []string) error {
	if verbose {
		fmt.Println(versionpkg.GetFullVersionInfo())
	} else {
		fmt.Println(versionpkg.GetVersion())
	}
	return nil
}

// LoadConfigWithFallback loads the config file when given, otherwise the
// default path, otherwise built-in defaults.
func LoadConfigWithFallback(path string) *config.Config {
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		common.CLILogger.Debug("Using default configuration: %v", err)
		return config.GetDefaultConfig()
	}
	return cfg
}
