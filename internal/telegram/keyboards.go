package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// Callback tags carried in inline keyboard buttons.
const (
	tagProfile       = "profile"
	tagDeposit       = "deposit"
	tagCatalog       = "catalog"
	tagCatalogSites  = "catalog_sites"
	tagBuySiteEasy   = "buy_site_easy"
	tagBuySiteHard   = "buy_site_hard"
	tagBuyBot        = "buy_bot"
	tagApp           = "app"
	tagSupport       = "support"
	tagCreateMirror  = "create_mirror"
	tagMirrorList    = "mirror_list"
	tagHasToken      = "has_token"
	tagBackToMain    = "back_to_main"
	tagBackToCatalog = "back_to_catalog"
	tagCancelOrder   = "cancel_order"

	tagConfirmOrderPrefix  = "confirm_order_"
	tagRejectOrderPrefix   = "reject_order_"
	tagRespondTicketPrefix = "respond_ticket_"
)

func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "👤 Profile", CallbackData: tagProfile}},
			{{Text: "📦 Catalog", CallbackData: tagCatalog}},
			{{Text: "🛟 Support", CallbackData: tagSupport}},
			{{Text: "🪞 Create mirror", CallbackData: tagCreateMirror}},
			{{Text: "📋 My mirrors", CallbackData: tagMirrorList}},
		},
	}
}

func catalogKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🌐 Website from 49₽", CallbackData: tagCatalogSites}},
			{{Text: "🤖 Telegram Bot - 99₽", CallbackData: tagBuyBot}},
			{{Text: "📱 App", CallbackData: tagApp}},
			{{Text: "◀️ Back", CallbackData: tagBackToMain}},
		},
	}
}

func sitesKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Website (Easy) - 49₽", CallbackData: tagBuySiteEasy}},
			{{Text: "Website (Hard) - 69₽", CallbackData: tagBuySiteHard}},
			{{Text: "◀️ Back", CallbackData: tagBackToCatalog}},
		},
	}
}

func profileKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "💳 Top up balance", CallbackData: tagDeposit}},
			{{Text: "◀️ Back", CallbackData: tagBackToMain}},
		},
	}
}

func paymentKeyboard(paymentURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "💳 Pay", URL: paymentURL}},
			{{Text: "◀️ Back", CallbackData: tagProfile}},
		},
	}
}

func cancelKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "❌ Cancel", CallbackData: tagCancelOrder}},
		},
	}
}

func backKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "◀️ Back", CallbackData: tagBackToMain}},
		},
	}
}

func hasTokenKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "I have a token", CallbackData: tagHasToken}},
			{{Text: "◀️ Back", CallbackData: tagBackToMain}},
		},
	}
}

func confirmOrderKeyboard(orderID string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Yes", CallbackData: tagConfirmOrderPrefix + orderID},
				{Text: "❌ No", CallbackData: tagRejectOrderPrefix + orderID},
			},
		},
	}
}

func respondTicketKeyboard(ticketID int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📝 Respond", CallbackData: fmt.Sprintf("%s%d", tagRespondTicketPrefix, ticketID)}},
		},
	}
}
