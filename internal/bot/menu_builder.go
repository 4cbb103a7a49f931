package bot

import (
	"log/slog"

	"github.com/UnknownOlympus/metrica/internal/i18n"
	"gopkg.in/telebot.v4"
)

// MenuBuilder renders menu definitions as localized inline keyboards.
type MenuBuilder struct {
	log       *slog.Logger
	registry  *MenuRegistry
	localizer *i18n.Localizer
}

// NewMenuBuilder creates a new menu builder instance.
func NewMenuBuilder(log *slog.Logger, localizer *i18n.Localizer) *MenuBuilder {
	return &MenuBuilder{
		log:       log,
		registry:  NewMenuRegistry(),
		localizer: localizer,
	}
}

// Build generates the title and inline keyboard of a menu. Unknown menus fall back to the main menu.
func (mb *MenuBuilder) Build(lang string, menuType MenuType) (string, *telebot.ReplyMarkup) {
	menuDef := mb.registry.Get(menuType)
	if menuDef == nil {
		mb.log.Error("Menu definition not found", "menuType", menuType)
		menuDef = mb.registry.Get(MenuMain)
	}

	menu := &telebot.ReplyMarkup{}
	rows := mb.buildRows(lang, menu, menuDef.Buttons, menuDef.Layout)

	if menuDef.HasBack {
		rows = append(rows, menu.Row(mb.backButton(lang, menu)))
	}

	menu.Inline(rows...)
	return mb.localizer.Get(lang, menuDef.TitleKey), menu
}

// buildRows creates telebot.Row slices based on button layout.
func (mb *MenuBuilder) buildRows(lang string, menu *telebot.ReplyMarkup, buttons []MenuButton, layout []int) []telebot.Row {
	rows := make([]telebot.Row, 0, len(layout))
	buttonIdx := 0

	for _, rowSize := range layout {
		if buttonIdx >= len(buttons) {
			break
		}

		rowButtons := make([]telebot.Btn, 0, rowSize)
		for i := 0; i < rowSize && buttonIdx < len(buttons); i++ {
			rowButtons = append(rowButtons, mb.button(lang, menu, buttons[buttonIdx]))
			buttonIdx++
		}
		rows = append(rows, menu.Row(rowButtons...))
	}

	// Buttons not covered by the layout get a row each.
	for ; buttonIdx < len(buttons); buttonIdx++ {
		rows = append(rows, menu.Row(mb.button(lang, menu, buttons[buttonIdx])))
	}

	return rows
}

func (mb *MenuBuilder) button(lang string, menu *telebot.ReplyMarkup, btn MenuButton) telebot.Btn {
	action := btn.Action
	if btn.SubMenu != "" {
		action = Action{Kind: ActMenu, Arg: string(btn.SubMenu)}
	}
	return inlineButton(menu, mb.localizer.Get(lang, btn.TextKey), action)
}

func (mb *MenuBuilder) backButton(lang string, menu *telebot.ReplyMarkup) telebot.Btn {
	return inlineButton(menu, mb.localizer.Get(lang, "menu.back"), Action{Kind: ActMenu, Arg: string(MenuMain)})
}

// inlineButton builds a button whose raw callback data is the encoded action.
func inlineButton(menu *telebot.ReplyMarkup, text string, action Action) telebot.Btn {
	return menu.Data(text, "", action.Encode())
}
