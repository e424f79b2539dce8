package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tbxark/reliefwizard/attachment"
	"github.com/tbxark/reliefwizard/disaster"
	"github.com/tbxark/reliefwizard/field"
	"github.com/tbxark/reliefwizard/patch"
)

// input applies a line that is not a navigation command. It reports whether
// an autofill patch was applied.
func (a *app) input(ctx context.Context, out io.Writer, line string) bool {
	verb, rest, _ := strings.Cut(line, " ")
	switch strings.ToLower(verb) {
	case "attach":
		a.attach(out, strings.TrimSpace(rest))
		return false
	case "detach":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			fmt.Fprintln(out, "usage: detach <n>")
			return false
		}
		if err := a.wizard.RemoveAttachment(n - 1); err != nil {
			fmt.Fprintln(out, err)
		}
		return false
	case "location":
		a.location(out, strings.TrimSpace(rest))
		return false
	}

	if name, value, ok := strings.Cut(line, "="); ok {
		name = strings.TrimSpace(name)
		if def, known := a.wizard.Store().Schema().Lookup(name); known {
			if err := a.wizard.Set(name, parseValue(def.Kind, strings.TrimSpace(value))); err != nil {
				fmt.Fprintln(out, err)
				return false
			}
			if hint, ok := disaster.ContactHints(a.wizard.Store().Snapshot())[name]; ok {
				fmt.Fprintf(out, "Note: %s. It is kept as entered.\n", hint)
			}
			return false
		}
	}
	return a.autofillFrom(ctx, out, line)
}

func parseValue(kind field.Kind, raw string) any {
	if kind != field.KindTags {
		return raw
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (a *app) attach(out io.Writer, path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	file := attachment.File{
		Name:     filepath.Base(path),
		Handle:   path,
		MIMEType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Size:     info.Size(),
	}
	res, err := a.wizard.AddAttachments([]attachment.File{file})
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(out, "Not attached: %v\n", r)
	}
	for _, acc := range res.Accepted {
		fmt.Fprintf(out, "Attached %s (%d of %d)\n", acc.Name, a.wizard.Attachments().Len(), a.wizard.Attachments().Config().MaxAttachments)
	}
}

func (a *app) location(out io.Writer, arg string) {
	coords, address, _ := strings.Cut(arg, " ")
	latRaw, lngRaw, ok := strings.Cut(coords, ",")
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if !ok || latErr != nil || lngErr != nil {
		fmt.Fprintln(out, "usage: location <lat>,<lng> [address]")
		return
	}
	if err := a.wizard.OnLocationSelect("location", lat, lng, strings.TrimSpace(address)); err != nil {
		fmt.Fprintln(out, err)
	}
}

func (a *app) autofillFrom(ctx context.Context, out io.Writer, text string) bool {
	if a.autofill == nil {
		fmt.Fprintln(out, "Unrecognized input. Type help for the list of commands.")
		return false
	}
	store := a.wizard.Store()
	paths := make([]string, 0)
	for path := range store.Schema().AllowedPaths() {
		paths = append(paths, path)
	}
	args, err := a.autofill.GeneratePatch(ctx, &patch.Request{
		UserInput:    text,
		Values:       store.Snapshot().Plain(),
		Schema:       a.schema,
		AllowedPaths: paths,
		Missing:      a.wizard.Missing(),
		Guidance:     guidance(store.Schema()),
	})
	if err != nil {
		slog.Warn("autofill failed", "error", err)
		return false
	}
	if len(args.Ops) == 0 {
		return false
	}
	if err := a.wizard.ApplyPatch(args.Ops); err != nil {
		slog.Warn("failed to apply autofill", "error", err)
		return false
	}
	return true
}

func guidance(schema *field.Schema) map[string]string {
	out := make(map[string]string)
	for _, def := range schema.Definitions() {
		var parts []string
		if def.Description != "" {
			parts = append(parts, def.Description)
		}
		if len(def.Options) > 0 {
			parts = append(parts, "one of: "+strings.Join(def.Options, ", "))
		}
		if len(parts) > 0 {
			out[def.Pointer()] = strings.Join(parts, "; ")
		}
	}
	return out
}
