package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/autosave"
	"github.com/meikuraledutech/chainchart/canvas"
	"github.com/meikuraledutech/chainchart/memory"
	"github.com/meikuraledutech/chainchart/postgres"
)

func main() {
	ctx := context.Background()

	// Postgres when DATABASE_URL is set, otherwise an in-memory store.
	var store chainchart.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pg, err := postgres.Open(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pg.Close()
		store = pg
	}

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Drop nodes from the palette ───────────────────────────────────
	graph := chainchart.NewGraph()
	editor := canvas.NewMachine(graph)
	saver := autosave.New(store, chainchart.Project{Name: "Counter"})

	counter, err := editor.Drop(canvas.DropEvent{Screen: chainchart.Point{X: 110, Y: 150}, Token: "state"})
	if err != nil {
		log.Fatalf("drop: %v", err)
	}
	increment, err := editor.Drop(canvas.DropEvent{Screen: chainchart.Point{X: 410, Y: 150}, Token: "function"})
	if err != nil {
		log.Fatalf("drop: %v", err)
	}
	label, value := "count", "0"
	graph.UpdateNode(counter.ID, chainchart.NodePatch{Label: &label, Value: &value})
	graph.SetMetadataField(counter.ID, "type", "int")
	label = "increment"
	graph.UpdateNode(increment.ID, chainchart.NodePatch{Label: &label})
	saver.Schedule(graph.Snapshot())
	fmt.Printf("dropped %s at %v and %s at %v\n", counter.ID, counter.Position, increment.ID, increment.Position)

	// ── Draw an edge with pointer events ──────────────────────────────
	from, _ := chainchart.Anchor(counter, chainchart.SideRight)
	to, _ := chainchart.Anchor(increment, chainchart.SideLeft)
	view := editor.Transform()
	for _, step := range []struct {
		screen chainchart.Point
		fn     func(canvas.PointerEvent)
	}{
		{canvas.WorldToScreen(from, view), editor.PointerDown},
		{canvas.WorldToScreen(to, view), editor.PointerMove},
		{canvas.WorldToScreen(to, view), editor.PointerUp},
	} {
		step.fn(canvas.PointerEvent{
			Screen: step.screen,
			Target: canvas.HitTest(graph, view, step.screen),
		})
	}
	saver.Schedule(graph.Snapshot())
	fmt.Printf("edges: %d, mode: %s\n", len(graph.Edges()), canvas.ModeName(editor.Mode()))

	// ── Zoom around the cursor and look at the scene ──────────────────
	editor.Wheel(canvas.WheelEvent{Screen: chainchart.Point{X: 400, Y: 300}, DeltaY: -100, Ctrl: true})
	printJSON(editor.Scene())

	// ── Save and read back ────────────────────────────────────────────
	if err := saver.Close(ctx); err != nil {
		log.Fatalf("autosave: %v", err)
	}
	saved, err := store.GetProject(ctx, saver.ProjectID())
	if err != nil {
		log.Fatalf("get project: %v", err)
	}
	fmt.Printf("saved project %s (%s)\n", saved.ID, saved.Status)

	data, err := chainchart.MarshalDiagram(saved.Diagram())
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Println(chainchart.ExportFileName(saved.Name, saved.UpdatedAt))
	fmt.Println(string(data))

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteProject(ctx, saved.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("project deleted")
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
