// Package format renders work items, rollup state, trees, and diagnostics
// for terminal and JSON output.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/RamXX/rollup/internal/engine"
	"github.com/RamXX/rollup/internal/graph"
	"github.com/RamXX/rollup/internal/model"
	"github.com/RamXX/rollup/internal/ui"
)

// Table renders a compact work-item list.
// Format: STATUS_ICON ID [TYPE] - TITLE
func Table(w io.Writer, entries []*model.RegistryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No work items found.")
		return
	}

	for _, entry := range entries {
		title := entry.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}

		if entry.Deleted {
			line := fmt.Sprintf("%s %s [%s] - %s (deleted)",
				ui.StatusIconPlanned, entry.ID, entry.Type, title)
			fmt.Fprintln(w, ui.RenderDeletedLine(line))
			continue
		}

		var parts []string
		parts = append(parts, ui.RenderStatusIcon(string(entry.Status)))
		parts = append(parts, ui.RenderID(entry.ID))
		parts = append(parts, fmt.Sprintf("[%s]", ui.RenderType(string(entry.Type))))
		parts = append(parts, fmt.Sprintf("- %s", title))

		fmt.Fprintln(w, strings.Join(parts, " "))
	}
	fmt.Fprintf(w, "\n%d item(s)\n", len(entries))
}

// Detail renders a single work item with its rollup state and markdown body.
// doc may be nil for leaf items, body may be empty.
func Detail(w io.Writer, entry *model.RegistryEntry, doc *model.StateDocument, body string) {
	fmt.Fprintf(w, "%s %s %s %s [%s %s %s]\n",
		ui.RenderStatusIcon(string(entry.Status)),
		ui.RenderID(entry.ID),
		ui.RenderMuted("."),
		ui.RenderBold(entry.Title),
		ui.RenderType(string(entry.Type)),
		ui.RenderMuted("."),
		ui.RenderStatus(string(entry.Status)),
	)

	if entry.Parent != "" {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("Parent:"), entry.Parent)
	}
	fmt.Fprintf(w, "%s %s %s %s %s\n",
		ui.RenderAccent("Created:"),
		entry.Created,
		ui.RenderMuted("."),
		ui.RenderAccent("Updated:"),
		entry.Updated,
	)
	if entry.Deleted {
		fmt.Fprintf(w, "%s yes\n", ui.RenderAccent("Deleted:"))
	}

	if doc != nil {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("Progress:"),
			ui.RenderProgressBar(doc.Progress.Percentage, 20))
		fmt.Fprintf(w, "%s %d total %s %d completed %s %d in progress %s %d planned\n",
			ui.RenderAccent("Rollup:"),
			doc.Progress.TotalItems,
			ui.RenderMuted("."),
			doc.Progress.Completed,
			ui.RenderMuted("."),
			doc.Progress.InProgress,
			ui.RenderMuted("."),
			doc.Progress.Planned,
		)
		if len(doc.Children) > 0 {
			fmt.Fprintf(w, "%s\n", ui.RenderAccent("Children:"))
			for _, id := range sortedChildIDs(doc.Children) {
				summary := doc.Children[id]
				fmt.Fprintf(w, "  %s %s %s\n",
					ui.RenderStatusIcon(string(summary.Status)),
					id,
					ui.RenderProgressBar(summary.Progress, 10),
				)
			}
		}
	}

	if body != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, ui.RenderMarkdown(body))
	}
}

func sortedChildIDs(children map[string]model.ChildSummary) []string {
	ids := make([]string, 0, len(children))
	for id := range children {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Tree renders the hierarchy rooted at node with box-drawing connectors.
// progress resolves a node's rollup percentage; it returns false when the
// node carries no state document.
func Tree(w io.Writer, node *graph.TreeNode, progress func(id string) (int, bool)) {
	if node == nil {
		fmt.Fprintln(w, "No such work item.")
		return
	}
	renderTreeNode(w, node, "", true, true, progress)
}

func renderTreeNode(w io.Writer, node *graph.TreeNode, prefix string, isLast, isRoot bool, progress func(id string) (int, bool)) {
	connector := "├── "
	childPrefix := prefix + "│   "
	if isLast {
		connector = "└── "
		childPrefix = prefix + "    "
	}
	if isRoot {
		connector = ""
		childPrefix = ""
	}

	entry := node.Entry
	line := fmt.Sprintf("%s%s %s %s", prefix+connector,
		ui.RenderStatusIcon(string(entry.Status)), entry.ID, entry.Title)
	if progress != nil {
		if pct, ok := progress(entry.ID); ok {
			line += " " + ui.RenderProgressBar(pct, 10)
		}
	}
	fmt.Fprintln(w, line)

	for i, child := range node.Children {
		renderTreeNode(w, child, childPrefix, i == len(node.Children)-1, false, progress)
	}
}

// Stats renders aggregate hierarchy counts.
func Stats(w io.Writer, s graph.Stats) {
	fmt.Fprintf(w, "%s %d\n", ui.RenderAccent("Total:"), s.Total)
	fmt.Fprintf(w, "  %s %d\n", ui.RenderStatus("planned"), s.Planned)
	fmt.Fprintf(w, "  %s %d\n", ui.RenderStatus("in-progress"), s.InProgress)
	fmt.Fprintf(w, "  %s %d\n", ui.RenderStatus("completed"), s.Completed)
	fmt.Fprintf(w, "  %s %d\n", ui.RenderStatus("blocked"), s.Blocked)

	if len(s.ByType) > 0 {
		fmt.Fprintf(w, "%s\n", ui.RenderAccent("By type:"))
		types := make([]string, 0, len(s.ByType))
		for t := range s.ByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(w, "  %s %d\n", ui.RenderType(t), s.ByType[t])
		}
	}
}

// Diagnostics renders hierarchy validation findings, errors first.
func Diagnostics(w io.Writer, issues []engine.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "Hierarchy is consistent.")
		return
	}
	errs, warns := 0, 0
	for _, issue := range issues {
		if issue.Severity == engine.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	for _, issue := range issues {
		if issue.Severity != engine.SeverityError {
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", ui.RenderStatus("blocked"), issue.ItemID, issue.Message)
	}
	for _, issue := range issues {
		if issue.Severity == engine.SeverityError {
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", ui.RenderMuted("warning"), issue.ItemID, issue.Message)
	}
	fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", errs, warns)
}

// Repairs renders the outcome of a repair pass.
func Repairs(w io.Writer, results []engine.RepairResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "Nothing to repair.")
		return
	}
	for _, r := range results {
		if r.Success {
			fmt.Fprintf(w, "%s %s: %s\n", ui.StatusIconCompleted, r.ItemID, r.Action)
			continue
		}
		fmt.Fprintf(w, "%s %s: %s failed: %v\n", ui.StatusIconBlocked, r.ItemID, r.Action, r.Err)
	}
}

// JSON outputs any value as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
