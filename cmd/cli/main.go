package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookhub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

type bookListResponse struct {
	Books       []models.BookSummary `json:"books"`
	TotalPages  int                  `json:"total_pages"`
	CurrentPage int                  `json:"current_page"`
	TotalBooks  int                  `json:"total_books"`
	HasNext     bool                 `json:"has_next"`
	HasPrev     bool                 `json:"has_prev"`
}

func main() {
	global := flag.NewFlagSet("bookhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "books":
		handleBooks(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "reviews":
		handleReviews(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "export":
		handleExport(ctx, client, *baseURL, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "signup":
		fs := flag.NewFlagSet("auth signup", flag.ExitOnError)
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *name == "" || *email == "" || *password == "" {
			log.Fatal("name, email, and password are required")
		}

		payload := map[string]string{"name": *name, "email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/api/auth/signup", "", payload, &resp); err != nil {
			log.Fatalf("signup failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.AccessToken); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("signed up and logged in")
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/api/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.AccessToken); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "me":
		token := mustToken(tokenPath)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/auth/me", token, nil, &resp); err != nil {
			log.Fatalf("me failed: %v", err)
		}
		printJSON(resp)
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: bookhub auth <signup|login|me|logout>")
	}
}

func handleBooks(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("books list", flag.ExitOnError)
		search := fs.String("search", "", "search in title/author/description")
		genre := fs.String("genre", "", "genre filter")
		sortBy := fs.String("sort-by", "", "sort field (created_at, title, author, year)")
		sortOrder := fs.String("sort-order", "", "asc or desc")
		page := fs.Int("page", 1, "page number")
		limit := fs.Int("limit", 5, "page size")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/api/books")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *search != "" {
			qv.Set("search", *search)
		}
		if *genre != "" {
			qv.Set("genre", *genre)
		}
		if *sortBy != "" {
			qv.Set("sortBy", *sortBy)
		}
		if *sortOrder != "" {
			qv.Set("sortOrder", *sortOrder)
		}
		qv.Set("page", fmt.Sprintf("%d", *page))
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		u.RawQuery = qv.Encode()

		var resp bookListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("books show", flag.ExitOnError)
		id := fs.String("id", "", "book id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("book id is required")
		}

		var resp models.BookDetail
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/books/"+url.PathEscape(*id), "", nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "add":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("books add", flag.ExitOnError)
		title := fs.String("title", "", "title")
		author := fs.String("author", "", "author")
		description := fs.String("description", "", "description")
		genre := fs.String("genre", "", "genre")
		year := fs.Int("year", 0, "publication year")
		_ = fs.Parse(args)

		if *title == "" || *author == "" || *description == "" || *genre == "" || *year == 0 {
			log.Fatal("title, author, description, genre, and year are required")
		}

		payload := map[string]any{
			"title":       *title,
			"author":      *author,
			"description": *description,
			"genre":       *genre,
			"year":        *year,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/api/books", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "update":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("books update", flag.ExitOnError)
		id := fs.String("id", "", "book id")
		title := fs.String("title", "", "title")
		author := fs.String("author", "", "author")
		description := fs.String("description", "", "description")
		genre := fs.String("genre", "", "genre")
		year := fs.Int("year", 0, "publication year")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("book id is required")
		}

		// only send supplied fields
		payload := map[string]any{}
		if *title != "" {
			payload["title"] = *title
		}
		if *author != "" {
			payload["author"] = *author
		}
		if *description != "" {
			payload["description"] = *description
		}
		if *genre != "" {
			payload["genre"] = *genre
		}
		if *year != 0 {
			payload["year"] = *year
		}
		if len(payload) == 0 {
			log.Fatal("nothing to update")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/api/books/"+url.PathEscape(*id), token, payload, &resp); err != nil {
			log.Fatalf("update failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("books delete", flag.ExitOnError)
		id := fs.String("id", "", "book id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("book id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/api/books/"+url.PathEscape(*id), token, nil, &resp); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		printJSON(resp)
	case "mine":
		token := mustToken(tokenPath)
		var resp []models.BookSummary
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/books/profile/books", token, nil, &resp); err != nil {
			log.Fatalf("mine failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookhub books <list|show|add|update|delete|mine>")
	}
}

func handleReviews(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "add":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("reviews add", flag.ExitOnError)
		bookID := fs.String("book-id", "", "book id")
		rating := fs.Int("rating", 0, "rating 1-5")
		text := fs.String("text", "", "review text")
		_ = fs.Parse(args)
		if *bookID == "" {
			log.Fatal("book-id is required")
		}

		payload := map[string]any{
			"bookId":     *bookID,
			"rating":     *rating,
			"reviewText": *text,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/api/reviews", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "update":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("reviews update", flag.ExitOnError)
		id := fs.String("id", "", "review id")
		rating := fs.Int("rating", 0, "rating 1-5")
		text := fs.String("text", "", "review text")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("review id is required")
		}

		payload := map[string]any{}
		if *rating != 0 {
			payload["rating"] = *rating
		}
		if *text != "" {
			payload["reviewText"] = *text
		}
		if len(payload) == 0 {
			log.Fatal("nothing to update")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/api/reviews/"+url.PathEscape(*id), token, payload, &resp); err != nil {
			log.Fatalf("update failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("reviews delete", flag.ExitOnError)
		id := fs.String("id", "", "review id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("review id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/api/reviews/"+url.PathEscape(*id), token, nil, &resp); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		printJSON(resp)
	case "mine":
		token := mustToken(tokenPath)
		var resp []models.UserReview
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/reviews/profile/reviews", token, nil, &resp); err != nil {
			log.Fatalf("mine failed: %v", err)
		}
		printJSON(resp)
	case "book":
		fs := flag.NewFlagSet("reviews book", flag.ExitOnError)
		bookID := fs.String("book-id", "", "book id")
		_ = fs.Parse(args)
		if *bookID == "" {
			log.Fatal("book-id is required")
		}

		var resp []models.BookReview
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/reviews/book/"+url.PathEscape(*bookID), "", nil, &resp); err != nil {
			log.Fatalf("book failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookhub reviews <add|update|delete|mine|book>")
	}
}

func handleExport(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "json":
		fs := flag.NewFlagSet("export json", flag.ExitOnError)
		out := fs.String("out", "data/books.json", "output JSON path")
		limit := fs.Int("limit", 200, "max books to export")
		_ = fs.Parse(args)

		items, err := fetchBooks(ctx, client, baseURL, *limit)
		if err != nil {
			log.Fatalf("export json failed: %v", err)
		}
		if err := writeJSON(*out, items); err != nil {
			log.Fatalf("write json failed: %v", err)
		}
		log.Printf("exported %d books to %s", len(items), *out)
	case "csv":
		fs := flag.NewFlagSet("export csv", flag.ExitOnError)
		out := fs.String("out", "data/books.csv", "output CSV path")
		limit := fs.Int("limit", 200, "max books to export")
		_ = fs.Parse(args)

		items, err := fetchBooks(ctx, client, baseURL, *limit)
		if err != nil {
			log.Fatalf("export csv failed: %v", err)
		}
		if err := writeCSV(*out, items); err != nil {
			log.Fatalf("write csv failed: %v", err)
		}
		log.Printf("exported %d books to %s", len(items), *out)
	default:
		log.Fatal("usage: bookhub export <json|csv>")
	}
}

func fetchBooks(ctx context.Context, client *http.Client, baseURL string, limit int) ([]models.BookSummary, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	var out []models.BookSummary
	page := 1
	for len(out) < limit {
		pageSize := 50
		if remaining := limit - len(out); remaining < pageSize {
			pageSize = remaining
		}
		u, err := url.Parse(baseURL + "/api/books")
		if err != nil {
			return nil, err
		}
		qv := u.Query()
		qv.Set("page", fmt.Sprintf("%d", page))
		qv.Set("limit", fmt.Sprintf("%d", pageSize))
		u.RawQuery = qv.Encode()

		var resp bookListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Books) == 0 {
			break
		}
		out = append(out, resp.Books...)
		if !resp.HasNext {
			break
		}
		page++
	}

	return out, nil
}

func writeJSON(path string, items []models.BookSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []models.BookSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"id", "title", "author", "genre", "year", "average_rating", "review_count", "added_by_name",
	}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			item.ID,
			item.Title,
			item.Author,
			item.Genre,
			fmt.Sprintf("%d", item.Year),
			fmt.Sprintf("%.1f", item.AverageRating),
			fmt.Sprintf("%d", item.ReviewCount),
			item.AddedByName,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.bookhub-token.json"
	}
	return filepath.Join(home, ".bookhub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func printUsage() {
	fmt.Println("bookhub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth signup|login|me|logout")
	fmt.Println("  books list|show|add|update|delete|mine")
	fmt.Println("  reviews add|update|delete|mine|book")
	fmt.Println("  export json|csv")
}
