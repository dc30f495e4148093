package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"order_desk_bot/internal/convo"
	"order_desk_bot/internal/domain"
	"order_desk_bot/internal/logging"
	"order_desk_bot/internal/store"
)

// Telegram caps messages at 4096 chars; user listings are chunked below that.
const userListChunkSize = 4000

type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type ledgerService interface {
	GetOrCreate(ctx context.Context, userID int64, username, firstName string) (domain.User, error)
	ByAlias(ctx context.Context, alias string) (domain.User, error)
	Credit(ctx context.Context, userID int64, amount int64) error
	SetBalance(ctx context.Context, userID int64, amount int64) error
	Ban(ctx context.Context, alias, reason string, days int) error
	Nullify(ctx context.Context, alias string) (int64, error)
	List(ctx context.Context) ([]domain.User, error)
}

type orderService interface {
	Create(ctx context.Context, userID int64, kind, description string) (domain.Order, error)
	Confirm(ctx context.Context, orderID string) (domain.Order, error)
	Cancel(ctx context.Context, orderID string) (domain.Order, error)
}

type ticketService interface {
	Create(ctx context.Context, userID int64, message string) (domain.Ticket, error)
	Respond(ctx context.Context, ticketID int64, response string) (domain.Ticket, error)
}

type mirrorService interface {
	Register(ctx context.Context, userID int64, token string) (domain.Mirror, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Mirror, error)
}

type conversationTracker interface {
	Set(userID int64, state convo.State)
	Consume(userID int64) (convo.State, bool)
	Clear(userID int64)
}

type statsService interface {
	Snapshot(ctx context.Context) (store.Stats, error)
}

// Deps carries the services the router dispatches to.
type Deps struct {
	Ledger        ledgerService
	Orders        orderService
	Tickets       ticketService
	Mirrors       mirrorService
	Conversations conversationTracker
	Stats         statsService
}

// Router converts inbound Telegram updates into service calls and replies.
// Every handler error becomes a reply text; no error kills the poller.
type Router struct {
	deps       Deps
	owner      int64
	paymentURL string
	logger     *logrus.Entry
}

func newRouter(deps Deps, owner int64, paymentURL string, logger *logrus.Entry) *Router {
	if logger == nil {
		logger = logging.Logger()
	}
	if deps.Conversations == nil {
		deps.Conversations = convo.NewTracker()
	}

	return &Router{
		deps:       deps,
		owner:      owner,
		paymentURL: paymentURL,
		logger:     logger,
	}
}

// Handle is the bot default handler; it dispatches one update.
func (r *Router) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	r.dispatch(ctx, b, update)
}

func (r *Router) dispatch(ctx context.Context, s sender, update *models.Update) {
	if update == nil {
		return
	}

	meta := extractUpdateMeta(update)
	r.logger.WithFields(logging.Fields{
		"event":       "telegram_update",
		"update_type": meta.updateType,
		"user_id":     meta.userID,
		"chat_id":     meta.chatID,
	}).Debug("telegram update received")

	switch {
	case update.Message != nil && update.Message.From != nil:
		r.handleMessage(ctx, s, update.Message)
	case update.CallbackQuery != nil:
		r.handleCallback(ctx, s, update.CallbackQuery)
	}
}

func (r *Router) handleMessage(ctx context.Context, s sender, msg *models.Message) {
	chat := chatID(&msg.Chat)

	user, err := r.deps.Ledger.GetOrCreate(ctx, msg.From.ID, msg.From.Username, msg.From.FirstName)
	if err != nil {
		r.logger.WithError(err).WithField("event", "register_failed").Error("failed to register user on contact")
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	if user.Banned(time.Now()) {
		r.reply(ctx, s, chat, bannedText, nil)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		r.dispatchCommand(ctx, s, user, chat, text)
		return
	}

	r.dispatchFreeText(ctx, s, user, chat, text)
}

func (r *Router) dispatchCommand(ctx context.Context, s sender, user domain.User, chat int64, text string) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	args := fields[1:]

	switch cmd {
	case "/start":
		r.reply(ctx, s, chat, welcomeText, mainMenuKeyboard())
	case "/profile", "/balance":
		r.sendProfile(ctx, s, user, chat)
	case "/help":
		if user.UserID == r.owner {
			r.reply(ctx, s, chat, ownerHelpText, nil)
		} else {
			r.reply(ctx, s, chat, helpText, nil)
		}
	case "/catalog":
		r.reply(ctx, s, chat, catalogText, catalogKeyboard())
	case "/support":
		r.deps.Conversations.Set(user.UserID, convo.State{Kind: convo.KindSupportMessage})
		r.reply(ctx, s, chat, supportPromptText, backKeyboard())
	case "/addmoney":
		if r.requireOwner(ctx, s, user, chat) {
			r.handleAddMoney(ctx, s, chat, args)
		}
	case "/editbalance":
		if r.requireOwner(ctx, s, user, chat) {
			r.handleEditBalance(ctx, s, chat, args)
		}
	case "/nulluser":
		if r.requireOwner(ctx, s, user, chat) {
			r.handleNullUser(ctx, s, chat, args)
		}
	case "/banuser":
		if r.requireOwner(ctx, s, user, chat) {
			r.handleBanUser(ctx, s, chat, args)
		}
	case "/cancelsell":
		if r.requireOwner(ctx, s, user, chat) {
			r.handleCancelSell(ctx, s, chat, args)
		}
	case "/users":
		if r.requireOwner(ctx, s, user, chat) {
			r.handleUsers(ctx, s, chat)
		}
	case "/stats":
		if r.requireOwner(ctx, s, user, chat) {
			r.handleStats(ctx, s, chat)
		}
	default:
		r.reply(ctx, s, chat, unknownInputText, mainMenuKeyboard())
	}
}

// requireOwner is the single authorization gate for operator commands. It
// replies and reports false for anyone but the configured operator.
func (r *Router) requireOwner(ctx context.Context, s sender, user domain.User, chat int64) bool {
	if user.UserID == r.owner {
		return true
	}

	r.logger.WithFields(logging.Fields{
		"event":   "owner_command_refused",
		"user_id": user.UserID,
	}).WithError(domain.ErrPermissionDenied).Warn("non-operator attempted an operator command")
	r.reply(ctx, s, chat, permissionDeniedText, nil)
	return false
}

func (r *Router) handleAddMoney(ctx context.Context, s sender, chat int64, args []string) {
	if len(args) != 2 {
		r.reply(ctx, s, chat, addMoneyUsageText, nil)
		return
	}

	alias := args[0]
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		r.reply(ctx, s, chat, invalidAmountText, nil)
		return
	}

	target, err := r.deps.Ledger.ByAlias(ctx, alias)
	if err != nil {
		r.replyLedgerError(ctx, s, chat, err)
		return
	}

	if err := r.deps.Ledger.Credit(ctx, target.UserID, amount); err != nil {
		r.replyLedgerError(ctx, s, chat, err)
		return
	}

	r.notify(ctx, s, target.UserID,
		fmt.Sprintf("💰 Your balance was topped up by %d₽!\nThanks for the deposit!", amount), nil)
	r.reply(ctx, s, chat, fmt.Sprintf("✅ Topped up %s by %d₽", alias, amount), nil)
}

func (r *Router) handleEditBalance(ctx context.Context, s sender, chat int64, args []string) {
	if len(args) != 2 {
		r.reply(ctx, s, chat, editBalanceUsageText, nil)
		return
	}

	alias := args[0]
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount < 0 {
		r.reply(ctx, s, chat, invalidAmountText, nil)
		return
	}

	target, err := r.deps.Ledger.ByAlias(ctx, alias)
	if err != nil {
		r.replyLedgerError(ctx, s, chat, err)
		return
	}

	if err := r.deps.Ledger.SetBalance(ctx, target.UserID, amount); err != nil {
		r.replyLedgerError(ctx, s, chat, err)
		return
	}

	r.reply(ctx, s, chat, fmt.Sprintf("✅ Balance of %s set to %d₽", alias, amount), nil)
}

func (r *Router) handleNullUser(ctx context.Context, s sender, chat int64, args []string) {
	if len(args) < 1 {
		r.reply(ctx, s, chat, nullUserUsageText, nil)
		return
	}

	alias := args[0]
	reason := noReasonGivenText
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}

	targetID, err := r.deps.Ledger.Nullify(ctx, alias)
	if err != nil {
		r.replyLedgerError(ctx, s, chat, err)
		return
	}

	r.notify(ctx, s, targetID,
		fmt.Sprintf("🔄 Your account was reset!\nReason: %s", reason), nil)
	r.reply(ctx, s, chat, fmt.Sprintf("✅ Account %s was reset.", alias), nil)
}

func (r *Router) handleBanUser(ctx context.Context, s sender, chat int64, args []string) {
	if len(args) < 3 {
		r.reply(ctx, s, chat, banUserUsageText, nil)
		return
	}

	alias := args[0]
	reason := args[1]
	days, err := strconv.Atoi(args[2])
	if err != nil {
		r.reply(ctx, s, chat, invalidDaysText, nil)
		return
	}

	// Looked up first so the target can still be notified after the ban.
	target, err := r.deps.Ledger.ByAlias(ctx, alias)
	if err != nil {
		r.replyLedgerError(ctx, s, chat, err)
		return
	}

	if err := r.deps.Ledger.Ban(ctx, alias, reason, days); err != nil {
		r.replyLedgerError(ctx, s, chat, err)
		return
	}

	banText := fmt.Sprintf("🚫 You are banned for %d days. Reason: %s", days, reason)
	if days == domain.DurationForever {
		banText = fmt.Sprintf("🚫 You are banned permanently. Reason: %s", reason)
	}
	r.notify(ctx, s, target.UserID, banText, nil)
	r.reply(ctx, s, chat, fmt.Sprintf("✅ User %s is banned.", alias), nil)
}

func (r *Router) handleCancelSell(ctx context.Context, s sender, chat int64, args []string) {
	if len(args) < 2 {
		r.reply(ctx, s, chat, cancelSellUsageText, nil)
		return
	}

	orderID := args[0]
	reason := strings.Join(args[1:], " ")

	order, err := r.deps.Orders.Cancel(ctx, orderID)
	if err != nil {
		r.replyOrderError(ctx, s, chat, err)
		return
	}

	r.notify(ctx, s, order.UserID,
		fmt.Sprintf("❌ Your order was cancelled!\nThe money is back on your balance.\nReason: %s", reason), nil)
	r.reply(ctx, s, chat, fmt.Sprintf("✅ Order #%s cancelled, funds refunded.", orderID), nil)
}

func (r *Router) handleUsers(ctx context.Context, s sender, chat int64) {
	users, err := r.deps.Ledger.List(ctx)
	if err != nil {
		r.logger.WithError(err).WithField("event", "user_list_failed").Error("failed to list users")
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	if len(users) == 0 {
		r.reply(ctx, s, chat, noUsersText, nil)
		return
	}

	var b strings.Builder
	b.WriteString("📋 Users:\n\n")
	now := time.Now()
	for i, u := range users {
		status := "✅ active"
		if u.Banned(now) {
			status = "🚫 banned"
		}
		name := u.FirstName
		if name == "" {
			name = "no name"
		}
		fmt.Fprintf(&b, "%d. %s - %s - %d₽ - %s\n", i+1, name, u.Alias, u.Balance, status)
	}

	for _, chunk := range chunkText(b.String(), userListChunkSize) {
		r.reply(ctx, s, chat, chunk, nil)
	}
}

func (r *Router) handleStats(ctx context.Context, s sender, chat int64) {
	if r.deps.Stats == nil {
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	snapshot, err := r.deps.Stats.Snapshot(ctx)
	if err != nil {
		r.logger.WithError(err).WithField("event", "stats_failed").Error("failed to collect stats")
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	r.reply(ctx, s, chat, fmt.Sprintf(
		"📊 Stats:\n\nUsers: %d\nOrders: %d\nOpen tickets: %d",
		snapshot.Users, snapshot.Orders, snapshot.OpenTickets), nil)
}

func (r *Router) handleCallback(ctx context.Context, s sender, cb *models.CallbackQuery) {
	if _, err := s.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID}); err != nil {
		r.logger.WithError(err).WithField("event", "callback_answer_failed").Warn("failed to answer callback query")
	}

	user, err := r.deps.Ledger.GetOrCreate(ctx, cb.From.ID, cb.From.Username, cb.From.FirstName)
	if err != nil {
		r.logger.WithError(err).WithField("event", "register_failed").Error("failed to register user on callback")
		return
	}

	chat := messageChatID(cb.Message)
	if chat == 0 {
		chat = user.UserID
	}

	if user.Banned(time.Now()) {
		r.reply(ctx, s, chat, bannedText, nil)
		return
	}

	data := strings.TrimSpace(cb.Data)

	switch {
	case data == tagProfile:
		r.sendProfile(ctx, s, user, chat)
	case data == tagDeposit:
		r.reply(ctx, s, chat, depositText, paymentKeyboard(r.paymentURL))
	case data == tagCatalog, data == tagBackToCatalog:
		r.reply(ctx, s, chat, catalogText, catalogKeyboard())
	case data == tagCatalogSites:
		r.reply(ctx, s, chat, sitesCatalogText, sitesKeyboard())
	case data == tagBuySiteEasy:
		r.startPurchase(ctx, s, user, chat, domain.KindSiteEasy)
	case data == tagBuySiteHard:
		r.startPurchase(ctx, s, user, chat, domain.KindSiteHard)
	case data == tagBuyBot:
		r.startPurchase(ctx, s, user, chat, domain.KindBot)
	case data == tagApp:
		r.reply(ctx, s, chat, appInfoText, backKeyboard())
	case data == tagSupport:
		r.deps.Conversations.Set(user.UserID, convo.State{Kind: convo.KindSupportMessage})
		r.reply(ctx, s, chat, supportPromptText, backKeyboard())
	case data == tagCreateMirror:
		r.reply(ctx, s, chat, mirrorInstructionsText, hasTokenKeyboard())
	case data == tagHasToken:
		r.deps.Conversations.Set(user.UserID, convo.State{Kind: convo.KindMirrorToken})
		r.reply(ctx, s, chat, mirrorTokenPromptText, backKeyboard())
	case data == tagMirrorList:
		r.sendMirrorList(ctx, s, user, chat)
	case data == tagBackToMain:
		r.deps.Conversations.Clear(user.UserID)
		r.reply(ctx, s, chat, welcomeText, mainMenuKeyboard())
	case data == tagCancelOrder:
		r.deps.Conversations.Clear(user.UserID)
		r.reply(ctx, s, chat, orderCancelledText, mainMenuKeyboard())
	case strings.HasPrefix(data, tagConfirmOrderPrefix):
		if r.requireOwner(ctx, s, user, chat) {
			r.confirmOrder(ctx, s, chat, strings.TrimPrefix(data, tagConfirmOrderPrefix))
		}
	case strings.HasPrefix(data, tagRejectOrderPrefix):
		if r.requireOwner(ctx, s, user, chat) {
			orderID := strings.TrimPrefix(data, tagRejectOrderPrefix)
			r.deps.Conversations.Set(user.UserID, convo.State{Kind: convo.KindCancelReason, OrderID: orderID})
			r.reply(ctx, s, chat, fmt.Sprintf("Enter the reason for cancelling order #%s:", orderID), nil)
		}
	case strings.HasPrefix(data, tagRespondTicketPrefix):
		if r.requireOwner(ctx, s, user, chat) {
			ticketID, parseErr := strconv.ParseInt(strings.TrimPrefix(data, tagRespondTicketPrefix), 10, 64)
			if parseErr != nil {
				r.reply(ctx, s, chat, ticketNotFoundText, nil)
				return
			}
			r.deps.Conversations.Set(user.UserID, convo.State{Kind: convo.KindTicketResponse, TicketID: ticketID})
			r.reply(ctx, s, chat, "Enter your response to the ticket:", nil)
		}
	default:
		r.logger.WithFields(logging.Fields{
			"event":   "unknown_callback",
			"tag":     data,
			"user_id": user.UserID,
		}).Warn("unknown callback tag")
	}
}

// startPurchase checks the balance up front for a friendly screen; the real
// funds check happens again inside order creation.
func (r *Router) startPurchase(ctx context.Context, s sender, user domain.User, chat int64, kind string) {
	price, ok := domain.CatalogPrice(kind)
	if !ok {
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	if user.Balance < price {
		r.reply(ctx, s, chat, fmt.Sprintf(
			"❌ Insufficient funds!\n\nPrice: %d₽\nYour balance: %d₽\n\nTop up your balance in the profile.",
			price, user.Balance), backKeyboard())
		return
	}

	r.deps.Conversations.Set(user.UserID, convo.State{
		Kind:        convo.KindOrderDescription,
		ServiceKind: kind,
		Price:       price,
	})
	r.reply(ctx, s, chat, fmt.Sprintf("✅ %s - %d₽\n\nDescribe what you need:",
		domain.ServiceName(kind), price), cancelKeyboard())
}

func (r *Router) dispatchFreeText(ctx context.Context, s sender, user domain.User, chat int64, text string) {
	state, ok := r.deps.Conversations.Consume(user.UserID)
	if !ok {
		r.reply(ctx, s, chat, unknownInputText, mainMenuKeyboard())
		return
	}

	switch state.Kind {
	case convo.KindSupportMessage:
		r.createTicket(ctx, s, user, chat, text)
	case convo.KindMirrorToken:
		r.registerMirror(ctx, s, user, chat, text)
	case convo.KindOrderDescription:
		r.createOrder(ctx, s, user, chat, state.ServiceKind, text)
	case convo.KindCancelReason:
		r.rejectOrder(ctx, s, chat, state.OrderID, text)
	case convo.KindTicketResponse:
		r.respondTicket(ctx, s, chat, state.TicketID, text)
	default:
		r.reply(ctx, s, chat, unknownInputText, mainMenuKeyboard())
	}
}

func (r *Router) createTicket(ctx context.Context, s sender, user domain.User, chat int64, text string) {
	ticket, err := r.deps.Tickets.Create(ctx, user.UserID, text)
	if err != nil {
		r.logger.WithError(err).WithField("event", "ticket_create_failed").Error("failed to create support ticket")
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	r.notify(ctx, s, r.owner, fmt.Sprintf(
		"📩 New support message!\n\nFrom: %s (%d)\nMessage: %s",
		user.Alias, user.UserID, text), respondTicketKeyboard(ticket.TicketID))
	r.reply(ctx, s, chat, supportSentText, mainMenuKeyboard())
}

func (r *Router) registerMirror(ctx context.Context, s sender, user domain.User, chat int64, token string) {
	if _, err := r.deps.Mirrors.Register(ctx, user.UserID, token); err != nil {
		if errors.Is(err, domain.ErrDuplicateToken) || errors.Is(err, domain.ErrInvalidFormat) {
			r.reply(ctx, s, chat, mirrorDuplicateText, mainMenuKeyboard())
			return
		}
		r.logger.WithError(err).WithField("event", "mirror_register_failed").Error("failed to register mirror")
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	r.reply(ctx, s, chat, mirrorAddedText, mainMenuKeyboard())
}

func (r *Router) createOrder(ctx context.Context, s sender, user domain.User, chat int64, kind, description string) {
	order, err := r.deps.Orders.Create(ctx, user.UserID, kind, description)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			price, _ := domain.CatalogPrice(kind)
			r.reply(ctx, s, chat, fmt.Sprintf(
				"❌ Insufficient funds! You need %d₽.", price), mainMenuKeyboard())
			return
		}
		r.logger.WithError(err).WithField("event", "order_create_failed").Error("failed to create order")
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	r.notify(ctx, s, r.owner, fmt.Sprintf(
		"🛒 New order!\n\nService: %s - %d₽\nFrom: %s (%d)\nOrder: #%s\nDetails: %s\n\nStart working on it?",
		domain.ServiceName(order.Kind), order.Price, user.Alias, user.UserID, order.OrderID, description),
		confirmOrderKeyboard(order.OrderID))
	r.reply(ctx, s, chat, fmt.Sprintf(
		"✅ Order #%s created!\nWaiting for a specialist to confirm.", order.OrderID), mainMenuKeyboard())
}

func (r *Router) confirmOrder(ctx context.Context, s sender, chat int64, orderID string) {
	order, err := r.deps.Orders.Confirm(ctx, orderID)
	if err != nil {
		r.replyOrderError(ctx, s, chat, err)
		return
	}

	r.notify(ctx, s, order.UserID, orderConfirmedNotice, nil)
	r.reply(ctx, s, chat, fmt.Sprintf("Order #%s is now in progress!", orderID), backKeyboard())
}

func (r *Router) rejectOrder(ctx context.Context, s sender, chat int64, orderID, reason string) {
	order, err := r.deps.Orders.Cancel(ctx, orderID)
	if err != nil {
		r.replyOrderError(ctx, s, chat, err)
		return
	}

	r.notify(ctx, s, order.UserID, fmt.Sprintf(
		"❌ A specialist cancelled your order!\nThe money is back on your balance.\nReason: %s", reason), nil)
	r.reply(ctx, s, chat, fmt.Sprintf("Order #%s cancelled.", orderID), mainMenuKeyboard())
}

func (r *Router) respondTicket(ctx context.Context, s sender, chat int64, ticketID int64, response string) {
	ticket, err := r.deps.Tickets.Respond(ctx, ticketID, response)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			r.reply(ctx, s, chat, ticketNotFoundText, nil)
		case errors.Is(err, domain.ErrInvalidTransition):
			r.reply(ctx, s, chat, "❌ The ticket is already closed.", nil)
		default:
			r.logger.WithError(err).WithField("event", "ticket_respond_failed").Error("failed to respond to ticket")
			r.reply(ctx, s, chat, genericErrorText, nil)
		}
		return
	}

	r.notify(ctx, s, ticket.UserID, fmt.Sprintf("📨 Support response:\n\n%s", response), nil)
	r.reply(ctx, s, chat, ticketResponseSent, mainMenuKeyboard())
}

func (r *Router) sendProfile(ctx context.Context, s sender, user domain.User, chat int64) {
	name := user.FirstName
	if name == "" {
		name = "not set"
	}

	r.reply(ctx, s, chat, fmt.Sprintf(
		"👤 Your profile\n\nName: %s\nWallet ID: %s\nBalance: %d₽",
		name, user.Alias, user.Balance), profileKeyboard())
}

func (r *Router) sendMirrorList(ctx context.Context, s sender, user domain.User, chat int64) {
	mirrors, err := r.deps.Mirrors.ListByUser(ctx, user.UserID)
	if err != nil {
		r.logger.WithError(err).WithField("event", "mirror_list_failed").Error("failed to list mirrors")
		r.reply(ctx, s, chat, genericErrorText, nil)
		return
	}

	if len(mirrors) == 0 {
		r.reply(ctx, s, chat, mirrorListEmptyText, backKeyboard())
		return
	}

	var b strings.Builder
	b.WriteString("📋 Your mirror bots:\n\n")
	for i, m := range mirrors {
		token := m.Token
		if len(token) > 10 {
			token = token[:10] + "..."
		}
		fmt.Fprintf(&b, "%d. Token: %s\n   Created: %s\n\n", i+1, token, m.CreatedAt.Format("02.01.2006 15:04"))
	}

	r.reply(ctx, s, chat, b.String(), backKeyboard())
}

func (r *Router) replyLedgerError(ctx context.Context, s sender, chat int64, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.reply(ctx, s, chat, userNotFoundText, nil)
	case errors.Is(err, domain.ErrInvalidDuration):
		r.reply(ctx, s, chat, invalidDaysText, nil)
	case errors.Is(err, domain.ErrInvalidFormat):
		r.reply(ctx, s, chat, invalidAmountText, nil)
	default:
		r.logger.WithError(err).WithField("event", "ledger_command_failed").Error("ledger operation failed")
		r.reply(ctx, s, chat, genericErrorText, nil)
	}
}

func (r *Router) replyOrderError(ctx context.Context, s sender, chat int64, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.reply(ctx, s, chat, orderNotFoundText, nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		r.reply(ctx, s, chat, "❌ The order is no longer pending.", nil)
	default:
		r.logger.WithError(err).WithField("event", "order_command_failed").Error("order operation failed")
		r.reply(ctx, s, chat, genericErrorText, nil)
	}
}

func chunkText(text string, size int) []string {
	if len(text) <= size {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/size+1)
	for len(text) > size {
		cut := strings.LastIndexByte(text[:size], '\n')
		if cut <= 0 {
			cut = size
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}
