package profile

import (
	"fmt"
	"io"
	"net/http"

	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/program"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// OpcodeChart is a bar chart of executions per opcode.
func (p *Profiler) OpcodeChart(title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d instructions", p.Total()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	entries := p.Entries()
	names := make([]string, len(entries))
	data := make([]opts.BarData, len(entries))
	for i, e := range entries {
		names[i] = e.Opcode
		data[i] = opts.BarData{Name: e.Opcode, Value: e.Count}
	}
	bar.SetXAxis(names).AddSeries("executions", data)
	return bar
}

// HotChart is a bar chart of the n busiest instruction addresses.
func (p *Profiler) HotChart(n int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Hot addresses"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	hot := p.HotSpots(n)
	addrs := make([]string, len(hot))
	data := make([]opts.BarData, len(hot))
	for i, h := range hot {
		addrs[i] = fmt.Sprintf("%04d", h.Addr)
		data[i] = opts.BarData{Name: addrs[i], Value: h.Count}
	}
	bar.SetXAxis(addrs).AddSeries("executions", data)
	return bar
}

// FlowGraph draws the static basic blocks of image. Blocks that executed are
// orange and carry their entry count as value.
func (p *Profiler) FlowGraph(image []int64) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Control flow",
			Subtitle: "basic blocks, orange when entered",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	nodes, links := p.flowData(image)
	graph.AddSeries("blocks", nodes, links).SetSeriesOptions(
		charts.WithGraphChartOpts(opts.GraphChart{
			Force:  &opts.GraphForce{Repulsion: 400, Gravity: 0.2},
			Layout: "force",
			Roam:   opts.Bool(true),
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right", Formatter: "{b}"}),
	)
	return graph
}

func blockName(start int64) string {
	return fmt.Sprintf("%04d", start)
}

func (p *Profiler) flowData(image []int64) ([]opts.GraphNode, []opts.GraphLink) {
	blocks := program.Blocks(program.Disassemble(image))
	known := make(map[int64]bool, len(blocks))
	nodes := make([]opts.GraphNode, 0, len(blocks))
	for _, b := range blocks {
		known[b.Start] = true
		entries := p.AddrCount(b.Start)
		color := "gray"
		if entries > 0 {
			color = "orange"
		}
		nodes = append(nodes, opts.GraphNode{
			Name:  blockName(b.Start),
			Value: float32(entries),
			Tooltip: &opts.Tooltip{
				Show:      opts.Bool(true),
				Formatter: types.FuncStr(fmt.Sprintf("Block %04d-%04d<br>%d lines<br>entered %d times", b.Start, b.End()-1, len(b.Lines), entries)),
			},
			ItemStyle: &opts.ItemStyle{
				Color: color,
			},
		})
	}
	var links []opts.GraphLink
	for _, b := range blocks {
		for _, s := range b.Successors {
			if !known[s] {
				continue
			}
			links = append(links, opts.GraphLink{Source: blockName(b.Start), Target: blockName(s)})
		}
	}
	return nodes, links
}

// Page collects the profile charts.
func (p *Profiler) Page(title string, image []int64) *components.Page {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(p.OpcodeChart(title), p.HotChart(20), p.FlowGraph(image))
	return page
}

// Render writes the profile as a standalone HTML page.
func (p *Profiler) Render(w io.Writer, title string, image []int64) error {
	return p.Page(title, image).Render(w)
}

// Serve renders the profile on every request until the server fails.
func (p *Profiler) Serve(addr, title string, image []int64) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(rw http.ResponseWriter, req *http.Request) {
		if err := p.Render(rw, title, image); err != nil {
			log.Warn(log.ProfileModule, "render failed", "err", err)
		}
	})
	log.Info(log.ProfileModule, "serving profile", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
