package telegram

// User-facing reply texts. Money amounts are whole rubles.
const (
	welcomeText = "Hi! I'm Web-Nify! I build websites, Telegram bots, " +
		"and occasionally desktop or mobile apps."

	bannedText       = "🚫 You are banned from the service."
	unknownInputText = "I didn't understand that. Use the menu below."
	genericErrorText = "Something went wrong. Please try again later."

	catalogText      = "📦 Service catalog:\n\nPick a service:"
	sitesCatalogText = "🌐 Website development:\n\nPick a site type:"
	appInfoText      = "📱 App development\n\nTo order an app, message @webnify"

	supportPromptText  = "🛟 Support\n\nPlease write your message:"
	supportSentText    = "✅ Your message was sent to support!"
	ticketResponseSent = "✅ Response sent to the user!"

	mirrorInstructionsText = "🪞 Creating a mirror bot\n\n" +
		"To create a mirror:\n" +
		"1. Create your own bot via @BotFather\n" +
		"2. Copy the bot token\n" +
		"3. Press the button below and send the token\n\n" +
		"Your bot then becomes an exact copy of this one."
	mirrorTokenPromptText = "Send your bot token:"
	mirrorAddedText       = "✅ Token added! Your mirror bot is active."
	mirrorDuplicateText   = "❌ Could not add the token. It may already be in use."
	mirrorListEmptyText   = "You have no mirror bots yet."

	orderCancelledText   = "Order cancelled."
	orderConfirmedNotice = "✅ A specialist started working on your order. Stay tuned!"

	permissionDeniedText = "❌ You are not allowed to run this command."

	depositText = "💳 Top up your balance via the payment page, then the " +
		"operator confirms the deposit manually."

	helpText = "Commands:\n" +
		"/start - main menu\n" +
		"/profile - your profile\n" +
		"/balance - your balance\n" +
		"/catalog - service catalog\n" +
		"/support - contact support\n" +
		"/help - this message"

	ownerHelpText = helpText + "\n\nOperator commands:\n" +
		"/addmoney <walletID> <amount>\n" +
		"/editbalance <walletID> <amount>\n" +
		"/nulluser <walletID> [reason]\n" +
		"/banuser <walletID> <reason> <days>\n" +
		"/cancelsell <orderID> [reason]\n" +
		"/users\n" +
		"/stats"
)

// Admin command usage and validation replies.
const (
	addMoneyUsageText = "Usage: /addmoney <walletID> <amount>\n" +
		"Example: /addmoney W-123456 1000"
	editBalanceUsageText = "Usage: /editbalance <walletID> <amount>\n" +
		"Example: /editbalance W-123456 500"
	nullUserUsageText = "Usage: /nulluser <walletID> [reason]\n" +
		"Example: /nulluser W-123456 rule violation"
	banUserUsageText = "Usage: /banuser <walletID> <reason> <days>\n" +
		"Example: /banuser W-123456 spam 7\n" +
		"Use -1 for a permanent ban"
	cancelSellUsageText = "Usage: /cancelsell <orderID> [reason]\n" +
		"Example: /cancelsell 123456 wrong requirements"

	invalidAmountText  = "❌ Invalid amount!"
	invalidDaysText    = "❌ Days must be between 1 and 1200, or -1 for a permanent ban!"
	userNotFoundText   = "❌ User not found!"
	orderNotFoundText  = "❌ Order not found!"
	ticketNotFoundText = "❌ Ticket not found!"
	noUsersText        = "📭 No users yet."
	noReasonGivenText  = "not specified"
)
