package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/eventhub/internal/application"
	"github.com/example/eventhub/internal/gateway"
	"github.com/example/eventhub/internal/scheduler"
	"github.com/example/eventhub/internal/selectors"
	"github.com/example/eventhub/internal/settings"
	"github.com/example/eventhub/internal/store"
)

const dateLayout = "2006-01-02"

type command struct {
	usage   string
	private bool
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"signup":          {usage: "signup -email E -password P", run: cmdSignUp},
	"signin":          {usage: "signin -email E -password P", run: cmdSignIn},
	"signin-provider": {usage: "signin-provider github|facebook", run: cmdSignInProvider},
	"signout":         {usage: "signout", run: cmdSignOut},
	"open":            {usage: "open PATH", run: cmdOpen},
	"dashboard":       {usage: "dashboard", private: true, run: cmdDashboard},
	"calendar":        {usage: "calendar [YYYY-MM-DD]", private: true, run: cmdCalendar},
	"create-event":    {usage: "create-event -title T -start RFC3339 -end RFC3339 [flags]", private: true, run: cmdCreateEvent},
	"delete-event":    {usage: "delete-event ID", private: true, run: cmdDeleteEvent},
	"share":           {usage: "share ID", run: cmdShare},
	"buy-ticket":      {usage: "buy-ticket [-type NAME] EVENT_ID", private: true, run: cmdBuyTicket},
	"tickets":         {usage: "tickets", private: true, run: cmdTickets},
	"ratings":         {usage: "ratings EVENT_ID", private: true, run: cmdRatings},
	"rate":            {usage: "rate -rating 1..5 [-comment C] EVENT_ID", private: true, run: cmdRate},
	"friends":         {usage: "friends [-filter all|online|offline]", private: true, run: cmdFriends},
	"friend-requests": {usage: "friend-requests", private: true, run: cmdFriendRequests},
	"friend-search":   {usage: "friend-search TEXT", private: true, run: cmdFriendSearch},
	"friend-add":      {usage: "friend-add USER_ID", private: true, run: cmdFriendAdd},
	"friend-respond":  {usage: "friend-respond [-decline] USER_ID", private: true, run: cmdFriendRespond},
	"settings":        {usage: "settings [FIELD VALUE]", private: true, run: cmdSettings},
	"notifications":   {usage: "notifications [-read ID] [-mark-all]", private: true, run: cmdNotifications},
	"dark-mode":       {usage: "dark-mode", run: cmdDarkMode},
	"chat":            {usage: "chat [-send TEXT] EVENT_ID", private: true, run: cmdChat},
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: eventhub COMMAND [ARGS]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func newFlags(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// oneArg parses fs and requires exactly one positional argument.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", fmt.Errorf("expected exactly one %s", what)
	}
	return strings.TrimSpace(fs.Arg(0)), nil
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func credentials(a *app, name string, args []string) (string, string, error) {
	fs := newFlags(a, name)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	return *email, *password, nil
}

func cmdSignUp(ctx context.Context, a *app, args []string) error {
	email, password, err := credentials(a, "signup", args)
	if err != nil {
		return err
	}
	user, err := a.sessions.SignUp(ctx, email, password)
	if err != nil {
		return errors.New(application.AuthErrorMessage(err))
	}
	if err := a.saveToken(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Welcome, %s!\n", user.Name)
	return nil
}

func cmdSignIn(ctx context.Context, a *app, args []string) error {
	email, password, err := credentials(a, "signin", args)
	if err != nil {
		return err
	}
	user, err := a.sessions.SignIn(ctx, email, password)
	if err != nil {
		return errors.New(application.AuthErrorMessage(err))
	}
	if err := a.saveToken(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Signed in as %s\n", user.Email)
	return nil
}

func cmdSignInProvider(ctx context.Context, a *app, args []string) error {
	provider, err := oneArg(newFlags(a, "signin-provider"), args, "provider")
	if err != nil {
		return err
	}
	url, err := a.sessions.SignInWithProvider(ctx, provider)
	if err != nil {
		return errors.New(application.AuthErrorMessage(err))
	}
	fmt.Fprintf(a.stdout, "Continue in your browser: %s\n", url)
	return nil
}

func cmdSignOut(ctx context.Context, a *app, _ []string) error {
	signOutErr := a.sessions.SignOut(ctx)
	if err := a.saveToken(ctx); err != nil {
		return err
	}
	if signOutErr != nil {
		a.logger.Warn("gateway sign-out failed; local session cleared", "error", signOutErr)
	}
	fmt.Fprintln(a.stdout, "Signed out")
	return nil
}

func cmdOpen(_ context.Context, a *app, args []string) error {
	path, err := oneArg(newFlags(a, "open"), args, "path")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, a.navi.Resolve(path))
	return nil
}

func cmdDashboard(ctx context.Context, a *app, _ []string) error {
	events, err := a.events.Refresh(ctx)
	if err != nil {
		return err
	}
	now := a.now()
	metrics := selectors.ComputeMetrics(events, now)
	upcoming, _ := selectors.Partition(events, now)

	fmt.Fprintf(a.stdout, "Total events: %d\nUpcoming: %d\nRevenue: $%.2f\nAverage attendees: %.1f\n\n",
		metrics.Total, metrics.Upcoming, metrics.Revenue, metrics.AverageAttendees)
	printEvents(a.stdout, upcoming)
	return nil
}

func printEvents(w io.Writer, events []store.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	table(w, "ID\tTITLE\tSTART\tLOCATION\tPRICE\tATTENDEES", func(tw *tabwriter.Writer) {
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%d/%d\n",
				e.ID, e.Title, e.Date.Format(time.RFC3339), e.Location, e.Price, len(e.Attendees), e.Capacity)
		}
	})
}

func cmdCalendar(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "calendar")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		day, err := time.Parse(dateLayout, fs.Arg(0))
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		a.store.SetSelectedDate(day.Format(dateLayout))
	}
	if _, err := a.events.Refresh(ctx); err != nil {
		return err
	}

	snapshot := a.store.Snapshot()
	day := selectors.SelectedDay(snapshot, a.now())
	fmt.Fprintf(a.stdout, "Events on %s\n", day.Format(dateLayout))
	printEvents(a.stdout, selectors.EventsOnDate(snapshot.Events, day))
	return nil
}

func cmdCreateEvent(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "create-event")
	var input application.EventInput
	fs.StringVar(&input.Title, "title", "", "event title")
	fs.StringVar(&input.Description, "description", "", "event description")
	fs.StringVar(&input.Location, "location", "", "venue or address")
	fs.StringVar(&input.Image, "image", "", "cover image URL")
	fs.StringVar(&input.Category, "category", "", "event category")
	fs.Float64Var(&input.Price, "price", 0, "base ticket price")
	fs.IntVar(&input.Capacity, "capacity", 100, "maximum attendees")
	fs.BoolVar(&input.IsVirtual, "virtual", false, "virtual event")
	fs.StringVar(&input.StreamURL, "stream-url", "", "stream URL for virtual events")
	start := fs.String("start", "", "start time (RFC3339)")
	end := fs.String("end", "", "end time (RFC3339)")
	tags := fs.String("tags", "", "comma-separated tags")
	status := fs.String("status", string(store.EventStatusPublished), "draft, published or cancelled")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if input.Start, err = parseTime("start", *start); err != nil {
		return err
	}
	if input.End, err = parseTime("end", *end); err != nil {
		return err
	}
	for _, tag := range strings.Split(*tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			input.Tags = append(input.Tags, tag)
		}
	}
	input.Status = store.EventStatus(*status)

	event, err := a.events.Create(ctx, input)
	if err != nil {
		a.notify("Event not created", describe(err), store.SeverityError)
		return err
	}
	a.notify("Event created", event.Title+" is now listed", store.SeveritySuccess)
	fmt.Fprintf(a.stdout, "Created event %s\n", event.ID)

	for _, c := range scheduler.DetectVenueConflicts(a.store.Snapshot().Events, event) {
		a.notify("Venue double-booked", fmt.Sprintf("%s overlaps %s at %s", event.Title, c.Title, c.Location), store.SeverityWarning)
		fmt.Fprintf(a.stdout, "Warning: %s is also at %s from %s\n", c.Title, c.Location, c.Start.Format(time.RFC3339))
	}
	return nil
}

func parseTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s must be RFC3339: %w", name, err)
	}
	return parsed, nil
}

func cmdDeleteEvent(ctx context.Context, a *app, args []string) error {
	id, err := oneArg(newFlags(a, "delete-event"), args, "event id")
	if err != nil {
		return err
	}
	if err := a.events.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted event %s\n", id)
	return nil
}

func cmdShare(_ context.Context, a *app, args []string) error {
	id, err := oneArg(newFlags(a, "share"), args, "event id")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, application.ShareURL(a.cfg.PublicOrigin, id))
	return nil
}

func cmdBuyTicket(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "buy-ticket")
	typeName := fs.String("type", "General Admission", "ticket tier")
	eventID, err := oneArg(fs, args, "event id")
	if err != nil {
		return err
	}

	events, err := a.events.Refresh(ctx)
	if err != nil {
		return err
	}
	var event *store.Event
	for i := range events {
		if events[i].ID == eventID {
			event = &events[i]
			break
		}
	}
	if event == nil {
		return fmt.Errorf("%w: event %s", application.ErrNotFound, eventID)
	}

	var tier *application.TicketType
	for _, candidate := range application.DefaultTicketTypes(event.Price) {
		if strings.EqualFold(candidate.Name, *typeName) {
			tier = &candidate
			break
		}
	}
	if tier == nil {
		return fmt.Errorf("unknown ticket type %q", *typeName)
	}

	held, err := a.tickets.MyTickets(ctx)
	if err != nil {
		return err
	}

	ticket, err := a.tickets.Purchase(ctx, eventID, *tier)
	if err != nil {
		if errors.Is(err, gateway.ErrCapacityReached) {
			a.notify("Sold out", event.Title+" has no seats left", store.SeverityWarning)
		}
		return err
	}
	a.notify("Ticket purchased", fmt.Sprintf("%s for %s", tier.Name, event.Title), store.SeveritySuccess)
	fmt.Fprintf(a.stdout, "Ticket %s (%s, $%.2f)\nQR: %s\n", ticket.ID, ticket.TicketType, ticket.Price, ticket.QRCode)

	for _, c := range scheduler.DetectAttendanceConflicts(attendedEvents(events, held), *event) {
		a.notify("Schedule clash", fmt.Sprintf("%s overlaps %s", event.Title, c.Title), store.SeverityWarning)
		fmt.Fprintf(a.stdout, "Warning: you also attend %s from %s\n", c.Title, c.Start.Format(time.RFC3339))
	}
	return nil
}

// attendedEvents returns the events the user holds a ticket for.
func attendedEvents(events []store.Event, tickets []gateway.Ticket) []store.Event {
	held := make(map[string]bool, len(tickets))
	for _, t := range tickets {
		held[t.EventID] = true
	}
	var attended []store.Event
	for _, e := range events {
		if held[e.ID] {
			attended = append(attended, e)
		}
	}
	return attended
}

func cmdTickets(ctx context.Context, a *app, _ []string) error {
	tickets, err := a.tickets.MyTickets(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		fmt.Fprintln(a.stdout, "No tickets")
		return nil
	}
	table(a.stdout, "ID\tEVENT\tTYPE\tPRICE\tSTATUS", func(tw *tabwriter.Writer) {
		for _, t := range tickets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", t.ID, t.EventID, t.TicketType, t.Price, t.PaymentStatus)
		}
	})
	return nil
}

func printRatings(w io.Writer, summary application.RatingSummary) {
	if summary.Average != nil {
		fmt.Fprintf(w, "Average: %.1f (%d reviews)\n", *summary.Average, len(summary.Reviews))
	} else {
		fmt.Fprintln(w, "No ratings yet")
	}
	if summary.UserRating != nil {
		fmt.Fprintf(w, "Your rating: %d\n", *summary.UserRating)
	}
	for _, review := range summary.Reviews {
		fmt.Fprintf(w, "  %d/5 %s: %s\n", review.Rating, review.ReviewerName, review.Comment)
	}
}

func cmdRatings(ctx context.Context, a *app, args []string) error {
	eventID, err := oneArg(newFlags(a, "ratings"), args, "event id")
	if err != nil {
		return err
	}
	summary, err := a.ratings.Load(ctx, eventID)
	if err != nil {
		return err
	}
	printRatings(a.stdout, summary)
	return nil
}

func cmdRate(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "rate")
	rating := fs.Int("rating", 0, "score from 1 to 5")
	comment := fs.String("comment", "", "optional review")
	eventID, err := oneArg(fs, args, "event id")
	if err != nil {
		return err
	}
	summary, err := a.ratings.Submit(ctx, eventID, *rating, *comment)
	if err != nil {
		return err
	}
	printRatings(a.stdout, summary)
	return nil
}

func printFriends(a *app, friends []application.Friend) {
	if len(friends) == 0 {
		fmt.Fprintln(a.stdout, "Nobody here yet")
		return
	}
	now := a.now()
	table(a.stdout, "USER\tNAME\tSTATUS", func(tw *tabwriter.Writer) {
		for _, f := range friends {
			presence := "offline"
			if selectors.IsOnline(f.LastSeen, now) {
				presence = "online"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.UserID, f.FullName, presence)
		}
	})
}

func cmdFriends(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "friends")
	filter := fs.String("filter", string(application.FilterAll), "all, online or offline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	friends, err := a.friends.Friends(ctx)
	if err != nil {
		return err
	}
	printFriends(a, application.FilterFriends(friends, application.FriendFilter(*filter), a.now()))
	return nil
}

func cmdFriendRequests(ctx context.Context, a *app, _ []string) error {
	requests, err := a.friends.Requests(ctx)
	if err != nil {
		return err
	}
	printFriends(a, requests)
	return nil
}

func cmdFriendSearch(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "friend-search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	profiles, err := a.friends.Search(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintln(a.stdout, "No matches")
		return nil
	}
	table(a.stdout, "USER\tNAME", func(tw *tabwriter.Writer) {
		for _, p := range profiles {
			fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.FullName)
		}
	})
	return nil
}

func cmdFriendAdd(ctx context.Context, a *app, args []string) error {
	friendID, err := oneArg(newFlags(a, "friend-add"), args, "user id")
	if err != nil {
		return err
	}
	if err := a.friends.SendRequest(ctx, friendID); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Friend request sent")
	return nil
}

func cmdFriendRespond(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "friend-respond")
	decline := fs.Bool("decline", false, "decline instead of accepting")
	requesterID, err := oneArg(fs, args, "user id")
	if err != nil {
		return err
	}
	if err := a.friends.Respond(ctx, requesterID, !*decline); err != nil {
		return err
	}
	if *decline {
		fmt.Fprintln(a.stdout, "Request declined")
	} else {
		fmt.Fprintln(a.stdout, "Request accepted")
	}
	return nil
}

func cmdSettings(ctx context.Context, a *app, args []string) error {
	var (
		values settings.Settings
		err    error
	)
	switch len(args) {
	case 0:
		values, err = a.settings.Load(ctx)
	case 2:
		values, err = a.settings.Apply(ctx, args[0], args[1])
	default:
		return errors.New("expected no arguments or FIELD VALUE")
	}
	if err != nil {
		return err
	}

	for _, section := range settings.Sections() {
		fmt.Fprintf(a.stdout, "[%s]\n", section.Title)
		table(a.stdout, "FIELD\tVALUE", func(tw *tabwriter.Writer) {
			for _, field := range section.Fields {
				value, _ := values.Value(field.ID)
				fmt.Fprintf(tw, "%s\t%s\n", field.ID, value)
			}
		})
	}
	return nil
}

func cmdNotifications(_ context.Context, a *app, args []string) error {
	fs := newFlags(a, "notifications")
	readID := fs.String("read", "", "mark one notification as read")
	markAll := fs.Bool("mark-all", false, "mark every notification as read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *readID != "" {
		a.store.MarkNotificationAsRead(*readID)
	}
	if *markAll {
		a.store.MarkAllNotificationsAsRead()
	}

	notifications := a.store.Snapshot().Notifications
	fmt.Fprintf(a.stdout, "%d unread\n", selectors.UnreadCount(notifications))
	for _, n := range notifications {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Fprintf(a.stdout, "%s %s [%s] %s: %s\n", marker, n.ID, n.Type, n.Title, n.Message)
	}
	return nil
}

func cmdDarkMode(_ context.Context, a *app, _ []string) error {
	a.store.ToggleDarkMode()
	if a.store.Snapshot().DarkMode {
		fmt.Fprintln(a.stdout, "Dark mode on")
	} else {
		fmt.Fprintln(a.stdout, "Dark mode off")
	}
	return nil
}

func cmdChat(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "chat")
	send := fs.String("send", "", "post a message and exit")
	eventID, err := oneArg(fs, args, "event id")
	if err != nil {
		return err
	}

	printMessage := func(m gateway.ChatMessage) {
		fmt.Fprintf(a.stdout, "%s %s: %s\n", m.CreatedAt.Format(time.Kitchen), m.UserID, m.Message)
	}
	var live func(gateway.ChatMessage)
	if *send == "" {
		live = printMessage
	}

	room, err := application.OpenChatRoom(ctx, a.client, eventID, application.StoreSession(a.store), live, a.logger)
	if err != nil {
		return err
	}
	defer room.Close()

	for _, r := range room.BreakoutRooms() {
		fmt.Fprintf(a.stdout, "# %s (%d/%d)\n", r.Name, r.CurrentParticipants, r.Capacity)
	}
	for _, m := range room.Messages() {
		printMessage(m)
	}

	if *send != "" {
		sent, err := room.Send(ctx, *send)
		if err != nil {
			return err
		}
		if !sent {
			return errors.New("message is empty")
		}
		return nil
	}

	<-ctx.Done()
	return nil
}
