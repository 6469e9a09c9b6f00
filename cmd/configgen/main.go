package main

import (
	"flag"
	"log"

	"github.com/danmuck/procreceive/internal/config"
)

const defaultPath = "proc-receive.toml"

func main() {
	output := flag.String("output", defaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", defaultPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s (counter %s, namespace %s, base %s)",
			*input, cfg.CounterFile(), cfg.RefNamespace, cfg.BaseBranch)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
