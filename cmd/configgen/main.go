package main

import (
	"flag"
	"log"

	"github.com/danmuck/d4/internal/config"
)

const kindDir = "dir"

func main() {
	kind := flag.String("kind", config.KindClient, "config kind: client|collector|dir")
	output := flag.String("output", "", "output path for config template (a directory for -kind dir)")
	validate := flag.Bool("validate", false, "validate an existing config")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}
		switch *kind {
		case config.KindClient:
			cfg, err := config.LoadClientFile(path)
			if err != nil {
				log.Fatal(err)
			}
			cfg.Wipe()
		case config.KindCollector:
			_, keys, err := config.LoadCollectorFile(path)
			if err != nil {
				log.Fatal(err)
			}
			keys.Wipe()
		case kindDir:
			cfg, err := config.LoadClientDir(path)
			if err != nil {
				log.Fatal(err)
			}
			cfg.Wipe()
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	var err error
	if *kind == kindDir {
		err = config.WriteClientDir(target, *force)
	} else {
		err = config.WriteTemplate(target, *kind, *force)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config to %s", *kind, target)
}

func defaultPath(kind string) string {
	switch kind {
	case config.KindClient:
		return "client.toml"
	case config.KindCollector:
		return "collector.toml"
	case kindDir:
		return "conf.sample"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}
