package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"knaxim-client/internal/bootstrap"
	"knaxim-client/internal/config"
	"knaxim-client/internal/dto"
	"knaxim-client/internal/store"

	"github.com/fatih/color"
)

func main() {
	name := flag.String("user", os.Getenv("KNAXIM_USER"), "account name")
	pass := flag.String("pass", os.Getenv("KNAXIM_PASS"), "account password")
	find := flag.String("search", "", "text to search for after login")
	acronym := flag.String("acronym", "", "narrow the search to an acronym and list its expansions")
	group := flag.String("group", "", "group name to work in instead of the personal scope")
	preview := flag.Bool("preview", false, "print a preview of every matched file")
	watch := flag.Bool("watch", false, "log every store mutation")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		color.Red("❌ Failed to start: %v", err)
		os.Exit(1)
	}
	defer container.Close(context.Background())
	st := container.Store

	if *watch {
		feed, err := st.Subscribe(ctx)
		if err != nil {
			color.Red("❌ Failed to watch store: %v", err)
		} else {
			go func() {
				for evt := range feed {
					container.Logger.Debug("STORE", evt.EventType(), map[string]interface{}{
						"at": evt.Timestamp(),
					})
				}
			}()
		}
	}

	// 3. Session
	if _, err := st.GetUser(ctx, true); err == nil {
		color.Cyan("🔑 Resuming session as %s", st.CurrentUser().Name)
		st.AfterLogin(ctx)
	} else {
		if *name == "" || *pass == "" {
			color.Red("❌ Not signed in; pass -user and -pass (or KNAXIM_USER / KNAXIM_PASS)")
			os.Exit(2)
		}
		if _, err := st.Login(ctx, dto.LoginRequest{Name: *name, Password: *pass}); err != nil {
			drainErrors(st)
			os.Exit(1)
		}
		color.Cyan("🔑 Signed in as %s", st.CurrentUser().Name)
	}

	if *group != "" {
		if !activateGroup(st, *group) {
			color.Yellow("⚠️  Group %q not found, staying in personal scope", *group)
		}
	}

	printSummary(st)

	// 4. Optional search
	if *acronym != "" {
		if expansions := st.Acronyms(ctx, *acronym); len(expansions) > 0 {
			color.Yellow("\n%s", *acronym)
			for _, e := range expansions {
				fmt.Printf("  • %s\n", e)
			}
		}
	}
	if *find != "" {
		runSearch(ctx, st, *find, *acronym, *preview)
	}

	// 5. Surface errors, sign out
	drainErrors(st)
	st.Logout(ctx)
	drainErrors(st)
}

func activateGroup(st *store.Store, name string) bool {
	for _, g := range st.AvailableGroups() {
		if g.Name == name || g.Id == name {
			st.ActivateGroup(g.Id)
			return true
		}
	}
	return false
}

func printSummary(st *store.Store) {
	scope := "personal"
	if g := st.ActiveGroup(); g != nil {
		scope = "group " + g.Name
	}
	color.Yellow("\n📂 Workspace (%s)", scope)

	owned := st.PopulateFiles(st.OwnedFiles()...)
	shared := st.PopulateFiles(st.SharedFiles()...)
	fmt.Printf("  %d owned, %d shared, %d public files\n", len(owned), len(shared), len(st.PublicFiles()))
	for _, f := range owned {
		fmt.Printf("  - %s (%s)\n", f.Name, f.Id)
	}
	for _, f := range shared {
		fmt.Printf("  - %s (%s, shared)\n", f.Name, f.Id)
	}

	folders := st.Folders()
	if len(folders) > 0 {
		color.Yellow("\n🗂  Folders")
		for name, ids := range folders {
			fmt.Printf("  %s: %d files\n", name, len(ids))
		}
	}

	if groups := st.AvailableGroups(); len(groups) > 0 {
		color.Yellow("\n👥 Groups")
		for _, g := range groups {
			fmt.Printf("  %s (%d members)\n", g.Name, len(g.Members))
		}
	}
}

func runSearch(ctx context.Context, st *store.Store, find, acronym string, preview bool) {
	ok, err := st.Search(ctx, find, acronym)
	if err != nil || !ok {
		return
	}

	matches := st.SearchMatches()
	color.Yellow("\n🔎 %q: %d files", st.CurrentSearch(), len(matches))
	lines := st.SearchLines()
	for _, f := range matches {
		owner := f.OwnerId()
		if owner != "" {
			owner, _ = st.LoadOwner(ctx, store.UntaggedOwner(owner), false)
		}
		color.Green("  %s  (%d matches, owner %s)", f.Name, f.Count, owner)
		for _, l := range lines[f.Id].Matched {
			fmt.Printf("    %4d  %s\n", l.Position, l.Text())
		}
		if preview {
			fmt.Printf("    preview: %s\n", strings.Join(st.LoadPreview(ctx, f.Id), " "))
		}
	}
}

// drainErrors prints every queued error and waits for the loop to finish.
func drainErrors(st *store.Store) {
	<-st.ErrorLoop(func(err error) error {
		color.Red("❌ %v", err)
		return nil
	})
}
