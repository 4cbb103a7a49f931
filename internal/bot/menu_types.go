package bot

// MenuType represents different menu screens in the bot.
type MenuType string

const (
	MenuMain      MenuType = "main"
	MenuEmployees MenuType = "employees"
	MenuPayroll   MenuType = "payroll"
)

// MenuButton represents a single inline button in a menu.
type MenuButton struct {
	TextKey string   // i18n key for button text
	Action  Action   // what the button does
	SubMenu MenuType // if set, the button opens this menu instead
}

// MenuDefinition represents a complete menu screen.
type MenuDefinition struct {
	Type     MenuType
	TitleKey string // i18n key for the message shown above the menu
	Buttons  []MenuButton
	Layout   []int // Button layout: [2, 2, 1] means 2+2+1 buttons per row
	HasBack  bool  // Whether to show a back button to the main menu
}

// MenuRegistry holds all menu definitions.
type MenuRegistry struct {
	menus map[MenuType]*MenuDefinition
}

// NewMenuRegistry creates and initializes the menu registry with all menu definitions.
func NewMenuRegistry() *MenuRegistry {
	registry := &MenuRegistry{
		menus: make(map[MenuType]*MenuDefinition),
	}

	registry.registerMainMenu()
	registry.registerEmployeesMenu()
	registry.registerPayrollMenu()

	return registry
}

func (r *MenuRegistry) registerMainMenu() {
	r.menus[MenuMain] = &MenuDefinition{
		Type:     MenuMain,
		TitleKey: "menu.title",
		Layout:   []int{2, 2},
		Buttons: []MenuButton{
			{TextKey: "menu.calendar", Action: Action{Kind: ActCalendar}},
			{TextKey: "menu.employees", SubMenu: MenuEmployees},
			{TextKey: "menu.payroll", SubMenu: MenuPayroll},
			{TextKey: "menu.finance", Action: Action{Kind: ActFinance}},
		},
	}
}

func (r *MenuRegistry) registerEmployeesMenu() {
	r.menus[MenuEmployees] = &MenuDefinition{
		Type:     MenuEmployees,
		TitleKey: "employees.title",
		Layout:   []int{1, 1},
		HasBack:  true,
		Buttons: []MenuButton{
			{TextKey: "menu.employee_list", Action: Action{Kind: ActEmployees}},
			{TextKey: "menu.employee_add", Action: Action{Kind: ActEmployeeAdd}},
		},
	}
}

func (r *MenuRegistry) registerPayrollMenu() {
	r.menus[MenuPayroll] = &MenuDefinition{
		Type:     MenuPayroll,
		TitleKey: "payroll.title",
		Layout:   []int{1, 1, 1},
		HasBack:  true,
		Buttons: []MenuButton{
			{TextKey: "menu.payroll_pending", Action: Action{Kind: ActPayroll}},
			{TextKey: "menu.payroll_summary", Action: Action{Kind: ActPayrollSum}},
			{TextKey: "menu.payroll_export", Action: Action{Kind: ActPayrollExport}},
		},
	}
}

// Get retrieves a menu definition by type.
func (r *MenuRegistry) Get(menuType MenuType) *MenuDefinition {
	return r.menus[menuType]
}
