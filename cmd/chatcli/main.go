package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rolechat/internal/client"
	"rolechat/internal/models"
)

func main() {
	server := flag.String("server", "http://localhost:5001", "backend base URL")
	username := flag.String("username", "", "account username (omit when the server runs without auth)")
	password := flag.String("password", "", "account password")
	register := flag.Bool("register", false, "create the account before logging in")
	prefsPath := flag.String("prefs", defaultPrefsPath(), "preferences file")
	flag.Parse()

	ctx := context.Background()
	apiClient := client.NewAPIClient(*server)

	if *username != "" {
		if *register {
			if err := apiClient.Register(ctx, *username, *password); err != nil {
				log.Fatalf("register: %v", err)
			}
		}
		if _, err := apiClient.Login(ctx, *username, *password); err != nil {
			log.Fatalf("login: %v", err)
		}
	}

	prefs := client.LoadPreferences(*prefsPath)
	controller := client.NewController(apiClient, nil)
	controller.SetRole(prefs.Role)

	if err := controller.Hydrate(ctx); err != nil {
		log.Printf("failed to load chat history: %v", err)
	}
	for _, msg := range controller.Messages() {
		printMessage(msg)
	}

	fmt.Printf("role: %s | theme: %s | /role /theme /history /clear /quit\n", controller.Role(), prefs.Theme)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			if err := apiClient.Logout(ctx); err != nil {
				log.Printf("logout: %v", err)
			}
			return
		case line == "/history":
			for _, msg := range controller.Messages() {
				printMessage(msg)
			}
		case line == "/clear":
			if err := controller.Clear(ctx); err != nil {
				fmt.Printf("clear failed: %v\n", err)
			} else {
				fmt.Println("history cleared")
			}
		case line == "/theme":
			if prefs.Theme == client.ThemeLight {
				prefs.Theme = client.ThemeDark
			} else {
				prefs.Theme = client.ThemeLight
			}
			savePrefs(*prefsPath, prefs, controller)
			fmt.Printf("theme: %s\n", prefs.Theme)
		case strings.HasPrefix(line, "/role"):
			role := strings.TrimSpace(strings.TrimPrefix(line, "/role"))
			if role == "" {
				fmt.Printf("roles: %s\n", strings.Join(models.DefaultRoles, ", "))
				continue
			}
			controller.SetRole(role)
			prefs.Role = controller.Role()
			savePrefs(*prefsPath, prefs, controller)
			fmt.Printf("role: %s\n", controller.Role())
		default:
			reply, err := controller.Send(ctx, line)
			if err != nil {
				fmt.Printf("send failed: %v\n", err)
				continue
			}
			printMessage(reply)
		}
	}
}

func printMessage(msg models.Message) {
	if msg.ID == "" {
		return
	}
	label := "Bot"
	if msg.Sender == models.SenderUser {
		label = "You"
	}
	if msg.IsError {
		label = "Bot (error)"
	}
	fmt.Printf("%s: %s\n", label, msg.Text)
}

func savePrefs(path string, prefs client.Preferences, controller *client.Controller) {
	prefs.Role = controller.Role()
	if err := client.SavePreferences(path, prefs); err != nil {
		log.Printf("save preferences: %v", err)
	}
}

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rolechat-prefs.json"
	}
	return filepath.Join(home, ".rolechat", "prefs.json")
}
