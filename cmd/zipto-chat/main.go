package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"zipto/internal/cart"
	"zipto/internal/chat"
	"zipto/internal/chatapi"
	"zipto/internal/config"
	"zipto/internal/format"
	"zipto/internal/models"
	"zipto/internal/realtime"
	"zipto/internal/storage"

	"github.com/rs/zerolog"
)

// demoPrices is the price table for the built-in demo catalog
var demoPrices = map[string]models.VariantPrice{
	"milk_500ml":  {MRP: 30, Price: 27},
	"milk_1l":     {MRP: 58, Price: 52},
	"bread_400g":  {MRP: 45, Price: 40},
	"eggs_dozen":  {MRP: 90, Price: 84},
	"butter_100g": {MRP: 60, Price: 55},
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Durable client state, with an in-memory fallback so the chat
	// still works when the disk is unavailable
	var store storage.Store
	sqlite, err := storage.NewSQLite(cfg.StoragePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Falling back to in-memory storage")
		store = storage.NewMemory()
	} else {
		store = sqlite
	}
	defer store.Close()

	api := chatapi.New(cfg.APIBaseURL, time.Duration(cfg.ChatTimeout)*time.Second, logger)

	engine := buildEngine(cfg, api, store, logger)
	defer engine.socket.Close()

	ctx := context.Background()
	engine.store.Start(ctx)
	engine.store.Open()

	fmt.Println("zipto support chat. Type a message, or /help for commands.")
	printMessages(engine.store.Messages())

	repl(ctx, engine)
}

type engine struct {
	store  *chat.Store
	cart   *cart.Cart
	api    *chatapi.Client
	socket *realtime.Socket
}

func buildEngine(cfg *config.Config, api *chatapi.Client, store storage.Store, logger zerolog.Logger) *engine {
	e := &engine{cart: cart.New(cfg.NoFeesActive), api: api}

	// The socket reads the session id at connect time so reset
	// rotations take effect on reconnect
	e.socket = realtime.New(cfg.RealtimeURL, func() string {
		if e.store != nil {
			return e.store.SessionID()
		}
		return ""
	}, logger)

	e.store = chat.New(api, e.socket, store, cfg.HistoryLimit, logger)
	return e
}

func repl(ctx context.Context, e *engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			send(ctx, e, line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/help":
			printHelp()
		case "/history":
			printMessages(e.store.Messages())
		case "/retry":
			e.store.Retry(ctx, chatContext(e))
			printLatest(e.store)
		case "/reset":
			e.store.Reset()
			fmt.Println("Conversation cleared. New session:", e.store.SessionID())
		case "/health":
			status := e.api.CheckHealth(ctx)
			if status.Healthy {
				fmt.Printf("Assistant is up (provider=%s model=%s)\n", status.Provider, status.Model)
			} else {
				fmt.Println("Assistant is unreachable")
			}
		case "/cart":
			cartCommand(e, fields[1:])
		case "/quit", "/exit":
			return
		default:
			fmt.Println("Unknown command. Try /help.")
		}
	}
}

func send(ctx context.Context, e *engine, text string) {
	e.store.SendMessage(ctx, text, chatContext(e))
	printLatest(e.store)
	if lastError := e.store.LastError(); lastError != "" {
		fmt.Println("(send failed, /retry to try again)")
	}
}

// chatContext snapshots the demo cart for the outbound request
func chatContext(e *engine) models.ChatContext {
	chatCtx := models.ChatContext{Page: "home"}
	summary := e.cart.Summary(demoPrices)
	if summary.ItemCount > 0 {
		chatCtx.CartSummary = &summary
		chatCtx.Page = "cart"
	}
	return chatCtx
}

func cartCommand(e *engine, args []string) {
	if len(args) == 0 {
		printCart(e)
		return
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			fmt.Println("Usage: /cart add <product> <variant>")
			return
		}
		if _, found := demoPrices[cart.PriceKey(args[1], args[2])]; !found {
			fmt.Println("Not in the demo catalog:", args[1], args[2])
			return
		}
		e.cart.AddItem(args[1], args[2])
		printCart(e)
	case "rm":
		if len(args) != 3 {
			fmt.Println("Usage: /cart rm <product> <variant>")
			return
		}
		e.cart.RemoveItem(args[1], args[2])
		printCart(e)
	case "tip":
		if len(args) != 2 {
			fmt.Println("Usage: /cart tip <amount>")
			return
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil || amount < 0 {
			fmt.Println("Invalid tip amount")
			return
		}
		e.cart.SetTip(amount)
		printCart(e)
	case "clear":
		e.cart.Clear()
		fmt.Println("Cart cleared")
	default:
		fmt.Println("Cart commands: add, rm, tip, clear")
	}
}

func printCart(e *engine) {
	items := e.cart.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty")
		return
	}
	for _, item := range items {
		price := demoPrices[cart.PriceKey(item.ProductID, item.VariantID)]
		fmt.Printf("  %dx %s %s  %s", item.Quantity, item.ProductID, item.VariantID, format.Price(price.Price*float64(item.Quantity)))
		if discount := format.DiscountPercent(price.MRP, price.Price); discount > 0 {
			fmt.Printf("  (%d%% off)", discount)
		}
		fmt.Println()
	}

	totals := e.cart.Totals(demoPrices)
	fmt.Printf("  items %s  delivery %s  handling %s  tip %s\n",
		format.Price(totals.ItemTotalSelling), format.Price(totals.DeliveryFee),
		format.Price(totals.HandlingFee), format.Price(totals.Tip))
	fmt.Printf("  to pay %s", format.Price(totals.ToPay))
	if totals.TotalSavings > 0 {
		fmt.Printf("  (saving %s)", format.Price(totals.TotalSavings))
	}
	fmt.Println()
}

func printLatest(store *chat.Store) {
	messages := store.Messages()
	if len(messages) == 0 {
		return
	}
	printMessage(messages[len(messages)-1])
}

func printMessages(messages []models.ChatMessage) {
	for _, message := range messages {
		printMessage(message)
	}
}

func printMessage(message models.ChatMessage) {
	who := "you"
	if message.Role == models.RoleAssistant {
		who = "zipto"
	}
	marker := ""
	if message.IsError {
		marker = " [failed]"
	}
	fmt.Printf("[%s] %s%s: %s\n", format.MessageTime(message.Timestamp, time.Now()), who, marker, message.Content)
}

func printHelp() {
	fmt.Println(`Commands:
  <text>           send a message to support
  /history         show the conversation so far
  /retry           resend the last message after a failure
  /reset           start a fresh conversation and session
  /health          check the assistant backend
  /cart            show the demo cart
  /cart add|rm|tip|clear
  /quit            exit`)
}
