package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rigaku-tools/machine-fleet-backend/internal/client"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	baseURL := getEnv("FLEET_API_URL", "http://localhost:8080/api")
	api := client.NewClient(baseURL)

	store, err := client.NewSessionStore(os.Getenv("FLEETWATCH_SESSION"))
	if err != nil {
		logrus.Fatalf("Failed to open session store: %v", err)
	}

	session, err := store.Hydrate()
	if err != nil {
		logrus.Fatalf("Failed to hydrate session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch client.ResolveState(true, session) {
	case client.StateLogin:
		session = login(ctx, api, store)
	case client.StatePasswordChange:
		api.SetToken(session.Token)
		changePassword(ctx, api, store)
		session.RequirePasswordChange = false
	default:
		api.SetToken(session.Token)
	}

	logrus.Infof("Watching fleet at %s as %s", baseURL, session.Username)

	filter := os.Getenv("FLEET_FILTER")
	history := client.NewHistoryBook(20)

	fetch := func(ctx context.Context) ([]client.Machine, error) {
		machines, err := api.GetMachines(ctx)
		if err != nil {
			return nil, err
		}
		return history.Observe(machines, time.Now()), nil
	}

	onUpdate := func(machines []client.Machine) {
		render(client.FilterByNameOrCity(machines, filter), client.ComputeStats(machines))
	}

	onError := func(err error) {
		if errors.Is(err, client.ErrUnauthorized) {
			if clearErr := store.Clear(); clearErr != nil {
				logrus.Warnf("Failed to clear session: %v", clearErr)
			}
			logrus.Fatal("Session rejected by server, please log in again")
		}
		logrus.Warnf("Fleet refresh failed: %v", err)
	}

	poller := client.NewPoller(fetch, client.DefaultPollInterval, onUpdate, onError)
	poller.Run(ctx)

	logrus.Info("Fleet watch stopped")
}

// login authenticates from FLEET_EMAIL / FLEET_PASSWORD and persists the
// session.
func login(ctx context.Context, api *client.Client, store *client.SessionStore) *client.Session {
	email := os.Getenv("FLEET_EMAIL")
	password := os.Getenv("FLEET_PASSWORD")
	if email == "" || password == "" {
		logrus.Fatal("No stored session; set FLEET_EMAIL and FLEET_PASSWORD to log in")
	}

	session, err := api.Login(ctx, email, password)
	if err != nil {
		logrus.Fatalf("Login failed: %v", err)
	}
	if err := store.Save(session); err != nil {
		logrus.Warnf("Failed to persist session: %v", err)
	}

	if session.RequirePasswordChange {
		changePassword(ctx, api, store)
		session.RequirePasswordChange = false
	}
	return session
}

// changePassword completes the forced password change using
// FLEET_NEW_PASSWORD, then clears the stored flag.
func changePassword(ctx context.Context, api *client.Client, store *client.SessionStore) {
	newPassword := os.Getenv("FLEET_NEW_PASSWORD")
	if newPassword == "" {
		logrus.Fatal("Account must change its password; set FLEET_NEW_PASSWORD and restart")
	}

	if err := api.ChangePassword(ctx, os.Getenv("FLEET_PASSWORD"), newPassword); err != nil {
		logrus.Fatalf("Password change failed: %v", err)
	}
	if err := store.ClearPasswordChangeRequirement(); err != nil {
		logrus.Warnf("Failed to update stored session: %v", err)
	}
	logrus.Info("Password changed")
}

func render(machines []client.Machine, stats client.FleetStats) {
	fmt.Printf("\n=== Fleet at %s ===\n", time.Now().Format("15:04:05"))
	fmt.Printf("Total: %d  Running: %d  Error: %d  Avg efficiency: %d%%\n\n",
		stats.Total, stats.Running, stats.Error, stats.AvgEfficiency)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODEL\tSTATUS\tLOCATION\tTUBES\tTEMP\tEFF")
	for _, m := range machines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s, %s\t%d\t%.0f°C\t%d%%\n",
			m.Name, m.Model, m.Status, m.Location.City, m.Location.Country,
			len(m.Tubes), m.Temperature, m.Efficiency)
	}
	if err := w.Flush(); err != nil {
		logrus.Warnf("Failed to render table: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
