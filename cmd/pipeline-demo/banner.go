// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"

	"rivaas.dev/pipeline"
	"rivaas.dev/pipeline/metrics"
)

// colorWriter downsamples ANSI colors to what w supports. Production
// output never carries colors.
func colorWriter(w io.Writer, environment string) *colorprofile.Writer {
	cpw := colorprofile.NewWriter(w, os.Environ())
	if environment == "production" {
		cpw.Profile = colorprofile.NoTTY
	}
	return cpw
}

// printBanner writes the service name as ASCII art followed by the
// service, observability and handler sections.
func printBanner(out io.Writer, d *demo) {
	cfg := d.cfg
	w := colorWriter(out, cfg.Service.Environment)

	gradient := []string{"10", "11"}
	if cfg.Service.Environment == "development" {
		gradient = []string{"12", "14", "10", "11"}
	}

	var art strings.Builder
	for _, line := range figure.NewFigure(cfg.Service.Name, "", false).Slicify() {
		if strings.TrimSpace(line) == "" {
			art.WriteString("\n")
			continue
		}
		for i, char := range line {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(gradient[i%len(gradient)])).
				Bold(true)
			art.WriteString(style.Render(string(char)))
		}
		art.WriteString("\n")
	}

	categoryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Width(14).
		PaddingLeft(2).
		Align(lipgloss.Left)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	disabledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	providerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	line := func(sb *strings.Builder, label, value string) {
		sb.WriteString(labelStyle.Render(label) + "  " + value + "\n")
	}

	addr := cfg.Server.Address
	if strings.HasPrefix(addr, ":") {
		addr = "0.0.0.0" + addr
	}
	addr = "http://" + addr

	var sb strings.Builder
	sb.WriteString(categoryStyle.Render("Service") + "\n")
	version := cfg.Service.Version
	if version == "" {
		version = "-"
	}
	line(&sb, "Version:", valueStyle.Foreground(lipgloss.Color("14")).Render(version))
	line(&sb, "Environment:", valueStyle.Foreground(lipgloss.Color("11")).Render(cfg.Service.Environment))
	line(&sb, "Address:", valueStyle.Foreground(lipgloss.Color("10")).Render(addr))
	if cfg.Server.H2C {
		line(&sb, "Protocol:", valueStyle.Render("h2c"))
	}
	line(&sb, "Errors:", valueStyle.Render(cfg.Errors.Format))

	sb.WriteString("\n" + categoryStyle.Render("Observability") + "\n")
	switch {
	case d.metrics == nil:
		line(&sb, "Metrics:", disabledStyle.Render("Disabled"))
	case d.metrics.Provider() == metrics.PrometheusProvider:
		line(&sb, "Metrics:", valueStyle.Foreground(lipgloss.Color("13")).Render(addr+d.metrics.Path())+"  "+
			providerStyle.Render(fmt.Sprintf("[%s]", d.metrics.Provider())))
	default:
		line(&sb, "Metrics:", valueStyle.Foreground(lipgloss.Color("13")).Render("Enabled")+"  "+
			providerStyle.Render(fmt.Sprintf("[%s]", d.metrics.Provider())))
	}
	if d.tracer == nil {
		line(&sb, "Tracing:", disabledStyle.Render("Disabled"))
	} else {
		line(&sb, "Tracing:", valueStyle.Foreground(lipgloss.Color("12")).Render("Enabled")+"  "+
			providerStyle.Render(fmt.Sprintf("[%s]", d.tracer.Provider())))
	}
	if cfg.Logging.Access {
		line(&sb, "Access log:", valueStyle.Render("Enabled"))
	} else {
		line(&sb, "Access log:", disabledStyle.Render("Disabled"))
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, art.String())
	fmt.Fprintln(w)
	fmt.Fprint(w, sb.String())

	if cfg.Service.Environment == "development" {
		fmt.Fprintln(w)
		renderNodes(w, d.dispatcher.Nodes(), true)
	}
	fmt.Fprintln(w)
}

// renderNodes prints the flattened handler list in dispatch order.
func renderNodes(w io.Writer, nodes []pipeline.Node, colors bool) {
	if len(nodes) == 0 {
		return
	}

	kindStyles := map[pipeline.NodeKind]lipgloss.Style{
		pipeline.NodeFilter: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		pipeline.NodeRoute:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		pipeline.NodeAfter:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	}

	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		kind := n.Kind().String()
		if style, ok := kindStyles[n.Kind()]; ok && colors {
			kind = style.Render(kind)
		}
		extra := "-"
		if n.Predicate().HandlesFaults() {
			extra = "faults"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", n.Index()),
			kind,
			n.Methods().String(),
			n.Pattern(),
			extra,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(func() lipgloss.Style {
			if colors {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
			}
			return lipgloss.NewStyle()
		}()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 1)
			if row == table.HeaderRow && colors {
				style = style.Bold(true).Foreground(lipgloss.Color("230"))
			}
			return style
		}).
		Headers("#", "Kind", "Methods", "Pattern", "Matches").
		Rows(rows...)

	fmt.Fprintln(w, t.Render())
}
