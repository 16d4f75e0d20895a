package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskflow-client/board"
	"taskflow-client/config"
	"taskflow-client/domain"
	"taskflow-client/remote"
	"taskflow-client/session"
	"taskflow-client/store"
)

// taskflow-client's demo binary: log in against the configured authority,
// select a project and print its board columns.
func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	logger := log.StandardLogger()

	email := os.Getenv("TASKFLOW_EMAIL")
	password := os.Getenv("TASKFLOW_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("missing TASKFLOW_EMAIL / TASKFLOW_PASSWORD")
	}

	client := remote.New(cfg.AuthorityURL, logger)
	sessions := session.NewManager(client, logger)
	client.Token = sessions.Token

	var projectAPI store.ProjectAPI = client
	var taskAPI store.TaskAPI = client
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache := remote.NewCache(client, rc, cfg.CacheTTL)
		projectAPI = cache
		taskAPI = cache
	}

	projects := store.NewProjectStore(projectAPI, logger)
	tasks := store.NewTaskStore(taskAPI, logger)
	selection := store.NewSelection(projects, tasks, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := sessions.Login(ctx, email, password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	list, err := projects.List(ctx)
	if err != nil {
		log.Fatalf("list projects: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("no projects visible to this account")
		return
	}

	if err := selection.Select(ctx, sess, &list[0]); err != nil {
		log.Fatalf("select project: %v", err)
	}

	cols := board.Derive(tasks.Tasks(), sess)
	fmt.Printf("%s\n", list[0].Name)
	for _, status := range domain.Statuses {
		fmt.Printf("  %s:\n", domain.StatusLabels[status])
		for _, t := range cols.Column(status) {
			due := ""
			if t.DueDate != "" {
				due = " (due " + t.DueDate + ")"
			}
			fmt.Printf("    - %s%s\n", t.Title, due)
		}
	}
}
