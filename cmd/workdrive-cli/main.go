// Command workdrive-cli is a thin operator CLI over the WorkDrive storage
// client. Connection settings come from a YAML config file or, when no
// config is given, from the WORKDRIVE_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.yaml.in/yaml/v3"

	"github.com/driveport/workdrive_sdk_go/internal/logger"
	"github.com/driveport/workdrive_sdk_go/pkg/workdrive"
)

type fileConfig struct {
	APIURL      string `yaml:"api_url"`
	DownloadURL string `yaml:"download_url"`
	AccessToken string `yaml:"access_token"`
	LogLevel    string `yaml:"log_level"`
}

func main() {
	cfgPath := flag.String("config", "", "path to YAML config; WORKDRIVE_* env vars are used when omitted")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	client, err := buildClient(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(context.Background(), client, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: workdrive-cli [-config file.yaml] <command> [args]

commands:
  ls <folderID>                list folder contents
  stat <fileID>                print metadata for a resource
  upload <parentID[/name]> <localfile>
  download <fileID> <localfile>
  mkdir <parentID/name>        create a folder
  rm <fileID>                  move a resource to the trash
  mv <fileID> <destFolderID>   move a resource
  cp <fileID> <destFolderID>   copy a resource
  publish <fileID>             grant public view access
  unpublish <fileID>           revoke all share permissions
`)
}

func buildClient(cfgPath string) (*workdrive.Client, error) {
	log := logger.New(&logger.Config{Level: "info", Format: "console"})

	if cfgPath == "" {
		return workdrive.NewFromEnv(workdrive.WithLogger(log))
	}

	raw, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("config: access_token is required")
	}
	if cfg.LogLevel != "" {
		log = logger.New(&logger.Config{Level: cfg.LogLevel, Format: "console"})
	}

	opts := []workdrive.Option{workdrive.WithLogger(log)}
	if cfg.APIURL != "" {
		opts = append(opts, workdrive.WithBaseURL(cfg.APIURL))
	}
	if cfg.DownloadURL != "" {
		opts = append(opts, workdrive.WithDownloadBaseURL(cfg.DownloadURL))
	}
	return workdrive.New(workdrive.StaticToken(cfg.AccessToken), opts...)
}

func run(ctx context.Context, client *workdrive.Client, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ls":
		return withArgs(rest, 1, func() error { return cmdLs(ctx, client, rest[0]) })
	case "stat":
		return withArgs(rest, 1, func() error { return cmdStat(ctx, client, rest[0]) })
	case "upload":
		return withArgs(rest, 2, func() error { return cmdUpload(ctx, client, rest[0], rest[1]) })
	case "download":
		return withArgs(rest, 2, func() error { return cmdDownload(ctx, client, rest[0], rest[1]) })
	case "mkdir":
		return withArgs(rest, 1, func() error { return client.CreateDirectory(ctx, rest[0], nil) })
	case "rm":
		return withArgs(rest, 1, func() error { return client.Delete(ctx, rest[0]) })
	case "mv":
		return withArgs(rest, 2, func() error { return client.Move(ctx, rest[0], rest[1]) })
	case "cp":
		return withArgs(rest, 2, func() error { return client.Copy(ctx, rest[0], rest[1]) })
	case "publish":
		return withArgs(rest, 1, func() error { return client.SetVisibility(ctx, rest[0], workdrive.VisibilityPublic) })
	case "unpublish":
		return withArgs(rest, 1, func() error { return client.SetVisibility(ctx, rest[0], workdrive.VisibilityPrivate) })
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func withArgs(args []string, want int, fn func() error) error {
	if len(args) != want {
		usage()
		return fmt.Errorf("expected %d argument(s), got %d", want, len(args))
	}
	return fn()
}

func cmdLs(ctx context.Context, client *workdrive.Client, folderID string) error {
	it, err := client.ListContents(ctx, folderID, false)
	if err != nil {
		return err
	}
	for {
		attr, ok := it.Next()
		if !ok {
			return nil
		}
		switch a := attr.(type) {
		case workdrive.DirectoryAttributes:
			fmt.Printf("d %-12s %10s  %s\n", a.ID, "-", extraName(a.Extra))
		case workdrive.FileAttributes:
			fmt.Printf("- %-12s %10s  %s\n", a.ID, humanize.IBytes(uint64(a.Size)), extraName(a.Extra))
		}
	}
}

func cmdStat(ctx context.Context, client *workdrive.Client, fileID string) error {
	size, err := client.FileSize(ctx, fileID)
	if err != nil {
		return err
	}
	mimeType, err := client.MimeType(ctx, fileID)
	if err != nil {
		return err
	}
	visibility, err := client.Visibility(ctx, fileID)
	if err != nil {
		return err
	}
	modifiedMS, err := client.LastModified(ctx, fileID)
	if err != nil {
		return err
	}

	fmt.Printf("id:         %s\n", fileID)
	fmt.Printf("size:       %s (%d bytes)\n", humanize.IBytes(uint64(size)), size)
	fmt.Printf("mime type:  %s\n", mimeType)
	fmt.Printf("visibility: %s\n", visibility)
	fmt.Printf("modified:   %s\n", humanize.Time(time.UnixMilli(modifiedMS)))
	return nil
}

func cmdUpload(ctx context.Context, client *workdrive.Client, target, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file: %w", err)
	}
	defer f.Close()
	return client.WriteStream(ctx, target, f, nil)
}

func cmdDownload(ctx context.Context, client *workdrive.Client, fileID, localPath string) error {
	data, err := client.Read(ctx, fileID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return fmt.Errorf("write local file: %w", err)
	}
	fmt.Printf("downloaded %s (%s)\n", fileID, humanize.IBytes(uint64(len(data))))
	return nil
}

func extraName(extra map[string]any) string {
	if name, ok := extra["name"].(string); ok {
		return name
	}
	return "(unnamed)"
}
