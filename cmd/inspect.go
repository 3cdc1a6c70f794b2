package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"vlower/internal/loader"
)

var inspectCommand = &cobra.Command{
	Use:   "inspect",
	Short: "load a program file and print its definitions and items",
	Long:  ``,
	Run: func(cmd *cobra.Command, _ []string) {
		applyConfig(cmd)
		if err := inspect(); err != nil {
			fmt.Printf("service err: %v\n", err)
		}
	},
}

func init() {
	inspectCommand.Flags().StringSliceVar(&ProgramFiles, "file", nil, "program file(s)")
}

func inspect() error {
	l := loader.NewLoader()
	l.SetVstdCrate(Conf.Lower.VstdCrate)
	if err := l.LoadFromFiles(ProgramFiles); err != nil {
		return err
	}
	defs, items := inspectTables(l)
	pterm.DefaultSection.Println("Definitions")
	if err := pterm.DefaultTable.WithHasHeader().WithData(defs).Render(); err != nil {
		return err
	}
	pterm.DefaultSection.Println("Items")
	return pterm.DefaultTable.WithHasHeader().WithData(items).Render()
}

func inspectTables(l *loader.Loader) (pterm.TableData, pterm.TableData) {
	defs := pterm.TableData{{"Path", "Visibility", "Signature", "Where"}}
	for _, def := range l.Table().Defs() {
		sig := ""
		if def.Sig != nil {
			sig = def.Sig.String()
		}
		preds := make([]string, len(def.Predicates))
		for i, p := range def.Predicates {
			preds[i] = p.String()
		}
		defs = append(defs, []string{def.Path.String(), l.Table().Visibility(def.ID).String(), sig, strings.Join(preds, ", ")})
	}
	items := pterm.TableData{{"Kind", "Item", "Span"}}
	for _, item := range l.Items() {
		items = append(items, []string{item.Kind.String(), string(item.ID()), item.Span().String()})
	}
	return defs, items
}
