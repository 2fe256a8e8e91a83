// Package bot — commands.go: разбор команд и таблица псевдонимов.
package bot

import "strings"

// Канонические имена команд.
const (
	cmdHelp         = "help"
	cmdProfile      = "me"
	cmdRename       = "name"
	cmdBio          = "bio"
	cmdAchievements = "achievements"
	cmdHabits       = "habits"
	cmdHabitAdd     = "habit"
	cmdHabitCheck   = "check"
	cmdHabitDelete  = "delhabit"
	cmdTasks        = "tasks"
	cmdTaskAdd      = "task"
	cmdTaskDone     = "done"
	cmdTaskDelete   = "deltask"
	cmdFinance      = "finance"
	cmdIncome       = "income"
	cmdExpense      = "expense"
	cmdHistory      = "history"
	cmdTxDelete     = "deltx"
	cmdBills        = "bills"
	cmdBillAdd      = "bill"
	cmdBillPay      = "pay"
	cmdBillDelete   = "delbill"
	cmdSpin         = "spin"
	cmdSpinStats    = "spinstats"
	cmdChallenges   = "challenges"
	cmdFocus        = "focus"
	cmdStop         = "stop"
	cmdTimer        = "timer"
	cmdTimerConfig  = "timerconfig"
	cmdExport       = "export"
	cmdWipe         = "wipe"
)

// aliases сопоставляет написание команды с каноническим именем.
var aliases = map[string][]string{
	cmdHelp:         {"start", "help", "помощь", "команды"},
	cmdProfile:      {"me", "profile", "я", "профиль"},
	cmdRename:       {"name", "имя"},
	cmdBio:          {"bio", "осебе"},
	cmdAchievements: {"achievements", "достижения", "ачивки"},
	cmdHabits:       {"habits", "привычки"},
	cmdHabitAdd:     {"habit", "привычка"},
	cmdHabitCheck:   {"check", "отметить"},
	cmdHabitDelete:  {"delhabit", "удалитьпривычку"},
	cmdTasks:        {"tasks", "миссии", "задачи"},
	cmdTaskAdd:      {"task", "миссия", "задача"},
	cmdTaskDone:     {"done", "выполнить", "готово"},
	cmdTaskDelete:   {"deltask", "удалитьмиссию"},
	cmdFinance:      {"finance", "balance", "финансы", "баланс"},
	cmdIncome:       {"income", "доход"},
	cmdExpense:      {"expense", "расход"},
	cmdHistory:      {"history", "операции", "история"},
	cmdTxDelete:     {"deltx", "удалитьоперацию"},
	cmdBills:        {"bills", "счета"},
	cmdBillAdd:      {"bill", "счет", "счёт"},
	cmdBillPay:      {"pay", "оплатить"},
	cmdBillDelete:   {"delbill", "удалитьсчет", "удалитьсчёт"},
	cmdSpin:         {"spin", "колесо", "крутить"},
	cmdSpinStats:    {"spinstats", "статколесо"},
	cmdChallenges:   {"challenges", "челленджи", "испытания"},
	cmdFocus:        {"focus", "фокус"},
	cmdStop:         {"stop", "стоп"},
	cmdTimer:        {"timer", "таймер"},
	cmdTimerConfig:  {"timerconfig", "настройкитаймера"},
	cmdExport:       {"export", "backup", "экспорт"},
	cmdWipe:         {"wipe", "сброс"},
}

var commandIndex = buildIndex()

func buildIndex() map[string]string {
	idx := make(map[string]string)
	for canonical, names := range aliases {
		for _, n := range names {
			idx[n] = canonical
		}
	}
	return idx
}

// CommandParser парсит команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на каноническую команду и аргументы.
// Неизвестная команда возвращается как есть с isCommand=true.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	// /start@aprohfy_bot — команда с именем бота в группах
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	if canonical, ok := commandIndex[command]; ok {
		command = canonical
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}

const helpText = `🧭 Aprohfy — трекер привычек, миссий и финансов

👤 Профиль
!я — уровень, опыт и баланс жизни
!имя <имя> · !осебе <текст> · !достижения

🔥 Привычки
!привычки · !привычка Название #Категория
!отметить <номер> [вчера|ДД.ММ.ГГГГ] · !удалитьпривычку <номер>

🎯 Миссии
!миссии · !миссия Название [+очки] [@дата]
!выполнить <номер> · !удалитьмиссию <номер>
!колесо — усилить случайную миссию · !статколесо
!челленджи — задания дня

💰 Финансы
!финансы · !доход 1000 Зарплата · !расход 350 Обед #Еда
!операции · !удалитьоперацию <номер>
!счета [оплаченные|просроченные] · !счет Интернет @25.10.2026 [+700]
!оплатить <номер> · !удалитьсчет <номер>

⏱ Фокус
!фокус [перерыв|длинный] · !стоп · !таймер
!настройкитаймера 25 5 15 [автоперерыв] [автофокус]

💾 Данные
!экспорт · !сброс`
