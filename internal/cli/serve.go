package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reasontree/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		vf      viewFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive graph viewer in the browser",
		Long: `Serve the interactive graph viewer.

Open the printed address, choose a tree file, and click any node to read its
brief and reasoning. Files that fail to load show the parser message and
leave the previous graph in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := vf.apply(c.Config.View)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			sc := c.Config.Server
			if addr != "" {
				sc.Addr = addr
			}
			srv := server.New(server.Config{
				Addr:         sc.Addr,
				ReadTimeout:  sc.ReadTimeout,
				WriteTimeout: sc.WriteTimeout,
				SessionTTL:   sc.SessionTTL,
				MaxUpload:    sc.MaxUpload,
				View:         v,
			}, runner, c.Logger)

			printInfo("Viewer at %s", StyleLink.Render("http://"+sc.Addr))
			printDetail("Press Ctrl+C to stop")
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+c.Config.Server.Addr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	vf.register(cmd)

	return cmd
}
