// Command dcdump parses a .dc schema file and prints its structure or its
// stable fingerprint.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Open-OTP/godc/dclass"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "dcdump",
		Usage: "inspect .dc schema files",
		Commands: []*cli.Command{
			{
				Name:      "hash",
				Usage:     "print the schema's stable 32-bit fingerprint",
				ArgsUsage: "file.dc [file2.dc ...]",
				Action:    runHash,
			},
			{
				Name:      "dump",
				Usage:     "print every struct and dclass the schema declares",
				ArgsUsage: "file.dc [file2.dc ...]",
				Action:    runDump,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func parseArgs(c *cli.Context) (*dclass.File, error) {
	if c.NArg() == 0 {
		return nil, fmt.Errorf("expected at least one .dc file")
	}
	return dclass.ParseFiles(c.Args().Slice()...)
}

func runHash(c *cli.Context) error {
	dcf, err := parseArgs(c)
	if err != nil {
		return err
	}
	fmt.Printf("0x%08x\n", dcf.Hash())
	return nil
}

func runDump(c *cli.Context) error {
	dcf, err := parseArgs(c)
	if err != nil {
		return err
	}

	for _, s := range dcf.Structs {
		fmt.Printf("struct %s {\n", s.Name())
		for _, f := range s.Fields() {
			fmt.Printf("  %s\n", describeField(f))
		}
		fmt.Println("}")
	}

	for _, cls := range dcf.Classes {
		parents := make([]string, len(cls.Parents()))
		for i, p := range cls.Parents() {
			parents[i] = p.Name()
		}
		if len(parents) > 0 {
			fmt.Printf("dclass %s : %s {\n", cls.Name(), strings.Join(parents, ", "))
		} else {
			fmt.Printf("dclass %s {\n", cls.Name())
		}
		for _, f := range cls.BuildInheritedFields() {
			fmt.Printf("  [%d] %s\n", f.Number(), describeField(f))
		}
		fmt.Println("}")
	}

	fmt.Printf("schema hash: 0x%08x\n", dcf.Hash())
	return nil
}

func describeField(f dclass.Field) string {
	var kws []string
	for _, kw := range f.Keywords() {
		kws = append(kws, kw)
	}
	if len(kws) == 0 {
		return f.Name()
	}
	return fmt.Sprintf("%s %s", f.Name(), strings.Join(kws, " "))
}
