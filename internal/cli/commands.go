package cli

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	service "github.com/okian/bonusboard/internal/app"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/period"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.env.Stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := a.flags("login")
	key := fs.String("key", "", "Admin key to store")
	if err := parse(fs, args); err != nil {
		return err
	}
	k := strings.TrimSpace(*key)
	if k == "" {
		return fmt.Errorf("%w: login requires -key", ErrUsage)
	}
	if err := a.newService().Login(ctx, k); err != nil {
		return err
	}
	a.printf("admin key saved to %s\n", a.opts.DBPath)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := parse(a.flags("logout"), args); err != nil {
		return err
	}
	if err := a.newService().Logout(ctx); err != nil {
		return err
	}
	a.printf("logged out\n")
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := a.flags("list")
	mode := fs.String("mode", "today", "Range: today, week or custom")
	team := fs.String("team", "ALL", "Team filter")
	start := fs.String("start", "", "Custom range start (YYYY-MM-DD)")
	end := fs.String("end", "", "Custom range end (YYYY-MM-DD)")
	search := fs.String("q", "", "Qualifier substring")
	if err := parse(fs, args); err != nil {
		return err
	}
	kind, err := period.ParseKind(*mode)
	if err != nil {
		return err
	}
	list, err := a.newService().ListBonuses(ctx, service.BonusQuery{
		Kind: kind, Team: *team, Start: *start, End: *end, Search: *search,
	})
	if err != nil {
		return err
	}

	a.printf("%s to %s, team %s\n", list.Range.Start, list.Range.End, list.Team)
	tw := tabwriter.NewWriter(a.env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tQUALIFIER\tTEAM\tAMOUNT\tNOTE")
	for _, b := range list.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n", b.ID.String(), b.BonusDate, b.Qualifier, b.Team, b.Amount.Float(), b.Note)
	}
	_ = tw.Flush()
	a.printf("%d records, total %.2f\n", len(list.Rows), list.Total)
	return nil
}

func runSave(ctx context.Context, a *app, args []string) error {
	fs := a.flags("save")
	date := fs.String("date", a.env.Now().Format(period.DateLayout), "Bonus date (YYYY-MM-DD)")
	qualifier := fs.String("qualifier", "", "Qualifier name")
	team := fs.String("team", "", "Team")
	amount := fs.String("amount", "", "Amount")
	note := fs.String("note", "", "Note")
	if err := parse(fs, args); err != nil {
		return err
	}
	res, err := a.newService().SaveBonusWithStoredKey(ctx, model.BonusInput{
		BonusDate: strings.TrimSpace(*date),
		Qualifier: strings.TrimSpace(*qualifier),
		Team:      strings.TrimSpace(*team),
		Amount:    model.ParseAmount(*amount),
		Note:      *note,
	})
	if err != nil {
		return err
	}
	if id, ok := res["id"]; ok {
		a.printf("saved bonus %v\n", id)
		return nil
	}
	a.printf("saved\n")
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := a.flags("delete")
	id := fs.String("id", "", "Bonus id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("%w: delete requires -id", ErrUsage)
	}
	if err := a.newService().DeleteBonusWithStoredKey(ctx, strings.TrimSpace(*id)); err != nil {
		return err
	}
	a.printf("deleted bonus %s\n", strings.TrimSpace(*id))
	return nil
}

func runTopGuns(ctx context.Context, a *app, args []string) error {
	fs := a.flags("topguns")
	name := fs.String("period", period.LastWeek, "this_week, last_week, this_month or last_month")
	if err := parse(fs, args); err != nil {
		return err
	}
	view, err := a.newService().TopGuns(ctx, *name)
	if err != nil {
		return err
	}

	a.printf("%s (%s to %s)\n", view.Label, view.Range.Start, view.Range.End)
	tw := tabwriter.NewWriter(a.env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tQUALIFIER\tSALES\tAP\tOVR")
	for _, p := range view.Players {
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.2f\t%d\n", p.Rank, p.Qualifier, p.Sales, p.AP, p.OVR)
	}
	return tw.Flush()
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := a.flags("watch")
	popup := fs.Duration("popup", 2*time.Second, "Delay between printed toasts")
	every := fs.String("every", a.cfg.QueueSchedule, "Queue poll schedule")
	if err := parse(fs, args); err != nil {
		return err
	}
	a.cfg.PopupMS = int(popup.Milliseconds())
	a.cfg.QueueSchedule = *every

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := a.newService(service.WithSink(newPrinter(a.env.Stdout)))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	a.printf("watching %s (%s), ctrl-c to stop\n", a.cfg.BackendURL, a.cfg.QueueSchedule)

	<-ctx.Done()
	return nil
}
