package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gofat32/fat32shell/shell"
	"github.com/gofat32/fat32shell/volume"
)

func main() {
	app := &cli.App{
		Name:      "fat32shell",
		Usage:     "Mount a FAT32 image and drive it with an interactive shell",
		ArgsUsage: "IMAGE_FILE",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func run(context *cli.Context) error {
	path := context.Args().First()
	if path == "" {
		return cli.Exit("missing required argument: IMAGE_FILE", 1)
	}

	image, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer image.Close()

	vol, err := volume.Mount(image)
	if err != nil {
		return err
	}

	return shell.New(vol, os.Stdout).Run(os.Stdin)
}
