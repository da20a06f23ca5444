package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podlink/podlink/pkg/client"
	"github.com/podlink/podlink/pkg/config"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "podlink",
	Short: "Podlink - varlink client for a container daemon",
	Long: `Podlink talks to a podman-style container daemon over its varlink
socket, either directly or through an ssh tunnel to a remote host.

Destinations can be given with flags or loaded from a connections file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Podlink version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	pf := rootCmd.PersistentFlags()
	pf.String("uri", "", "Local varlink address (unix:/path_to_socket)")
	pf.String("interface", "", "Varlink interface name")
	pf.String("remote-uri", "", "Remote daemon socket (ssh://user@hostname[:port]/path_to_socket)")
	pf.String("identity-file", "", "Private key for the ssh tunnel")
	pf.Bool("ignore-hosts", false, "Skip host-key verification for the ssh tunnel")
	pf.String("known-hosts", "", "Alternate known-hosts file for the ssh tunnel")
	pf.String("config", "", "Connections file (yaml)")
	pf.String("connection", "", "Named destination from the connections file")

	rootCmd.AddCommand(containerCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(podCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}

// connect builds a client from the persistent flags, resolving a named
// destination from the connections file first so flags override it.
func connect(cmd *cobra.Command) (*client.Client, error) {
	var opts []client.Option

	cfgPath, _ := cmd.Flags().GetString("config")
	connName, _ := cmd.Flags().GetString("connection")
	if cfgPath != "" {
		f, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		conn, err := f.Lookup(connName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithConnection(conn))
	}

	if uri, _ := cmd.Flags().GetString("uri"); uri != "" {
		opts = append(opts, client.WithURI(uri))
	}
	if iface, _ := cmd.Flags().GetString("interface"); iface != "" {
		opts = append(opts, client.WithInterface(iface))
	}
	if remote, _ := cmd.Flags().GetString("remote-uri"); remote != "" {
		opts = append(opts, client.WithRemoteURI(remote))
	}
	if identity, _ := cmd.Flags().GetString("identity-file"); identity != "" {
		opts = append(opts, client.WithIdentityFile(identity))
	}
	if ignore, _ := cmd.Flags().GetBool("ignore-hosts"); ignore {
		opts = append(opts, client.WithIgnoreHosts())
	}
	if hosts, _ := cmd.Flags().GetString("known-hosts"); hosts != "" {
		opts = append(opts, client.WithKnownHosts(hosts))
	}

	return client.New(cmd.Context(), opts...)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show daemon version details",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		vers, err := c.System().Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Daemon version: %s\n", vers.Version)
		fmt.Printf("Go version:     %s\n", vers.GoVersion)
		if vers.OsArch != "" {
			fmt.Printf("OS/Arch:        %s\n", vers.OsArch)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show daemon host details",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		info, err := c.System().Info(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Host:       %s (%s/%s)\n", info.Host.Hostname, info.Host.OS, info.Host.Arch)
		fmt.Printf("Kernel:     %s\n", info.Host.Kernel)
		fmt.Printf("Containers: %d\n", info.Store.ContainerCount)
		fmt.Printf("Images:     %d\n", info.Store.ImageCount)
		fmt.Printf("Version:    %s\n", info.PodmanVersion)
		return nil
	},
}
