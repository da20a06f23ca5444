package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/podlink/podlink/pkg/client"
)

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Container commands
var containerCmd = &cobra.Command{
	Use:     "container",
	Aliases: []string{"ctr"},
	Short:   "Manage containers",
}

var containerListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ps"},
	Short:   "List containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctrs, err := c.Containers().List(cmd.Context())
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "CONTAINER ID\tIMAGE\tSTATUS\tNAMES")
		for _, ctr := range ctrs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(ctr.ID), ctr.Image, ctr.Status, ctr.Names)
		}
		return w.Flush()
	},
}

var containerStartCmd = &cobra.Command{
	Use:   "start CONTAINER",
	Short: "Start a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctr, err := c.Containers().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := ctr.Start(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(ctr.ID)
		return nil
	},
}

var containerStopCmd = &cobra.Command{
	Use:   "stop CONTAINER",
	Short: "Stop a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetInt("timeout")

		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctr, err := c.Containers().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := ctr.Stop(cmd.Context(), timeout); err != nil {
			return err
		}
		fmt.Println(ctr.ID)
		return nil
	},
}

var containerKillCmd = &cobra.Command{
	Use:   "kill CONTAINER",
	Short: "Send SIGKILL to a container and wait for it to stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetDuration("wait")

		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctr, err := c.Containers().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := ctr.Kill(cmd.Context(), syscall.SIGKILL, wait); err != nil {
			return err
		}
		fmt.Println(ctr.ID)
		return nil
	},
}

var containerRemoveCmd = &cobra.Command{
	Use:     "remove CONTAINER",
	Aliases: []string{"rm"},
	Short:   "Remove a container",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctr, err := c.Containers().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		id, err := ctr.Remove(cmd.Context(), force)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var containerLogsCmd = &cobra.Command{
	Use:   "logs CONTAINER",
	Short: "Show a container's logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctr, err := c.Containers().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		lines, err := ctr.Logs(cmd.Context())
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(strings.TrimRight(line, "\n"))
		}
		return nil
	},
}

var containerInspectCmd = &cobra.Command{
	Use:   "inspect CONTAINER",
	Short: "Show a container's full inspect document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctr, err := c.Containers().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc, err := ctr.Inspect(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(string(doc))
		return nil
	},
}

func init() {
	containerCmd.AddCommand(containerListCmd)
	containerCmd.AddCommand(containerStartCmd)
	containerCmd.AddCommand(containerStopCmd)
	containerCmd.AddCommand(containerKillCmd)
	containerCmd.AddCommand(containerRemoveCmd)
	containerCmd.AddCommand(containerLogsCmd)
	containerCmd.AddCommand(containerInspectCmd)

	containerStopCmd.Flags().Int("timeout", 10, "Seconds to wait before the daemon forces the stop")
	containerKillCmd.Flags().Duration("wait", 30*time.Second, "How long to wait for the container to stop (0 waits forever)")
	containerRemoveCmd.Flags().Bool("force", false, "Stop the container first if it is running")
}

// Image commands
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage images",
}

var imageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List images",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		imgs, err := c.Images().List(cmd.Context())
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "IMAGE ID\tREPO TAGS\tSIZE")
		for _, img := range imgs {
			fmt.Fprintf(w, "%s\t%s\t%d\n", shortID(img.ID), strings.Join(img.RepoTags, ","), img.Size)
		}
		return w.Flush()
	},
}

var imagePullCmd = &cobra.Command{
	Use:   "pull NAME",
	Short: "Pull an image from a registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		id, err := c.Images().Pull(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var imageRemoveCmd = &cobra.Command{
	Use:     "remove IMAGE",
	Aliases: []string{"rm"},
	Short:   "Remove an image",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		img, err := c.Images().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		id, err := img.Remove(cmd.Context(), force)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	imageCmd.AddCommand(imageListCmd)
	imageCmd.AddCommand(imagePullCmd)
	imageCmd.AddCommand(imageRemoveCmd)

	imageRemoveCmd.Flags().Bool("force", false, "Remove even if containers use the image")
}

// Pod commands
var podCmd = &cobra.Command{
	Use:   "pod",
	Short: "Manage pods",
}

var podListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pods",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		pods, err := c.Pods().List(cmd.Context())
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "POD ID\tNAME\tSTATUS\tCONTAINERS")
		for _, p := range pods {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", shortID(p.ID), p.Name, p.Status, len(p.Containers))
		}
		return w.Flush()
	},
}

func init() {
	podCmd.AddCommand(podListCmd)
}

// Volume commands
var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Manage volumes",
}

var volumeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List volumes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		vols, err := c.Volumes().List(cmd.Context(), nil, true)
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "NAME\tDRIVER\tMOUNT POINT")
		for _, v := range vols {
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.Name, v.Driver, v.MountPoint)
		}
		return w.Flush()
	},
}

var volumeCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, _ := cmd.Flags().GetString("driver")

		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		name, err := c.Volumes().Create(cmd.Context(), client.VolumeCreateOptions{
			Name:   args[0],
			Driver: driver,
		})
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}

var volumePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove unused volumes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		pruned, failed, err := c.Volumes().Prune(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range pruned {
			fmt.Println(name)
		}
		for _, msg := range failed {
			fmt.Fprintf(os.Stderr, "failed: %s\n", msg)
		}
		return nil
	},
}

func init() {
	volumeCmd.AddCommand(volumeListCmd)
	volumeCmd.AddCommand(volumeCreateCmd)
	volumeCmd.AddCommand(volumePruneCmd)

	volumeCreateCmd.Flags().String("driver", "", "Volume driver")
}
