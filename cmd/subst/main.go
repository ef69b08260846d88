// Command subst resolves ${command:path} placeholders in a text file (or
// stdin) and writes the interpolated result to stdout or a file.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/subst-go/subst"
	"github.com/subst-go/subst/commands"
	"github.com/subst-go/subst/events"
	"github.com/subst-go/subst/internal/config"
)

func main() {
	cmd := &cli.Command{
		Name:      "subst",
		Usage:     "resolve ${command:path} placeholders in text",
		ArgsUsage: "[template-file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (commands, backends)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "write output to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "backup",
				Usage: "keep a .bak copy when overwriting the output file",
			},
			&cli.BoolFlag{
				Name:  "dry",
				Usage: "report what would be written without touching the output file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log resolution events",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Printf("[ERR] (subst) %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	registry, clients, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer clients.Stop()

	input := subst.ResolverInput{
		Registry:      registry,
		DisableCache:  cfg.DisableCache,
		CacheFailures: cfg.CacheFailures,
	}
	if cmd.Bool("verbose") {
		input.EventHandler = logEvents
	}

	resolver, err := subst.NewResolver(input)
	if err != nil {
		return err
	}

	text, err := readInput(cmd)
	if err != nil {
		return err
	}

	out := resolver.Interpolate(ctx, text)

	if path := cmd.String("out"); path != "" {
		in := subst.FileRendererInput{
			Path:           path,
			CreateDestDirs: true,
			Dry:            cmd.Bool("dry"),
		}
		if cmd.Bool("backup") {
			in.Backup = subst.Backup
		}
		_, err := subst.NewFileRenderer(in).Render([]byte(out))
		return err
	}

	_, err = io.WriteString(os.Stdout, out)
	return err
}

// buildRegistry registers the configured commands, creating backend
// clients as needed.
func buildRegistry(cfg config.Config) (*subst.Registry, *commands.ClientSet, error) {
	registry := subst.NewRegistry()
	clients := commands.NewClientSet()

	for _, id := range cfg.Commands {
		switch id {
		case "env":
			registry.Register(id, commands.NewEnv())
		case "sh":
			registry.Register(id, commands.NewShell())
		case "file":
			registry.Register(id, &commands.File{Sandbox: cfg.Sandbox})
		case "sockaddr":
			registry.Register(id, commands.NewSockaddr())
		case "vault":
			if err := clients.CreateVaultClient(clientInput(cfg.Vault)); err != nil {
				return nil, nil, err
			}
			registry.Register(id, commands.NewVault(clients))
		case "consul":
			if err := clients.CreateConsulClient(clientInput(cfg.Consul)); err != nil {
				return nil, nil, err
			}
			consul := commands.NewConsulKV(clients)
			consul.Datacenter = cfg.Consul.Datacenter
			registry.Register(id, consul)
		default:
			return nil, nil, fmt.Errorf("unknown command %q in config", id)
		}
	}
	return registry, clients, nil
}

func clientInput(b config.Backend) *commands.CreateClientInput {
	return &commands.CreateClientInput{
		Address:      b.Address,
		Namespace:    b.Namespace,
		Token:        b.Token,
		UnwrapToken:  b.UnwrapToken,
		AuthEnabled:  b.AuthUsername != "",
		AuthUsername: b.AuthUsername,
		AuthPassword: b.AuthPassword,
		SSLEnabled:   b.SSL.Enabled,
		SSLVerify:    b.SSL.Verify,
		SSLCert:      b.SSL.Cert,
		SSLKey:       b.SSL.Key,
		SSLCACert:    b.SSL.CACert,
		SSLCAPath:    b.SSL.CAPath,
		ServerName:   b.SSL.ServerName,
	}
}

func readInput(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		data, err := os.ReadFile(cmd.Args().First())
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func logEvents(e events.Event) {
	switch t := e.(type) {
	case events.Pass:
		log.Printf("[DEBUG] (resolve) pass %d: %d matches", t.Number, t.Matches)
	case events.Dispatch:
		log.Printf("[DEBUG] (resolve) dispatch %s:%s", t.Command, t.Path)
	case events.UnknownCommand:
		log.Printf("[WARN] (resolve) unknown command %q", t.Command)
	case events.CommandError:
		log.Printf("[WARN] (resolve) %s:%s: %v", t.Command, t.Path, t.Error)
	case events.FetchError:
		log.Printf("[WARN] (resolve) %s:%s: %v", t.Command, t.Path, t.Error)
	case events.CacheHit:
		log.Printf("[DEBUG] (resolve) cache hit %s:%s", t.Command, t.Path)
	case events.ResolveDone:
		log.Printf("[DEBUG] (resolve) done in %d passes", t.Passes)
	}
}
