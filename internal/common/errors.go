// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Обработчики различают их через errors.Is и отправляют пользователю понятные сообщения.
package common

import "errors"

// Общие ошибки ввода
var (
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrEmptyName — пустое название
	ErrEmptyName = errors.New("название не может быть пустым")
	// ErrInvalidDate — дату не удалось разобрать
	ErrInvalidDate = errors.New("не понимаю дату, используй ГГГГ-ММ-ДД, ДД.ММ.ГГГГ, «сегодня» или «вчера»")
	// ErrNotFound — запись не найдена (неверный номер или id)
	ErrNotFound = errors.New("запись не найдена")
	// ErrTextTooLong — текст длиннее допустимого
	ErrTextTooLong = errors.New("слишком длинный текст")
)

// Ошибки привычек
var (
	// ErrDayOutOfWindow — в окне привычки нет такого дня
	ErrDayOutOfWindow = errors.New("этого дня нет в истории привычки")
)

// Ошибки финансов
var (
	// ErrInvalidTxType — тип операции не доход и не расход
	ErrInvalidTxType = errors.New("тип операции должен быть income или expense")
	// ErrEmptyDescription — у операции нет описания
	ErrEmptyDescription = errors.New("у операции должно быть описание")
	// ErrFinanceDisabled — финансы отключены в настройках
	ErrFinanceDisabled = errors.New("финансы временно отключены")
)

// Ошибки колеса фортуны
var (
	// ErrNoPendingTasks — нет незавершённых миссий для усиления
	ErrNoPendingTasks = errors.New("нет активных миссий для усиления")
	// ErrNoSpinsLeft — дневной лимит вращений исчерпан
	ErrNoSpinsLeft = errors.New("вращения на сегодня закончились")
	// ErrAlreadySpinning — колесо уже крутится
	ErrAlreadySpinning = errors.New("колесо уже крутится")
	// ErrNoPendingResult — нет результата, который можно принять или сбросить
	ErrNoPendingResult = errors.New("нет результата вращения")
	// ErrFortuneDisabled — колесо отключено в настройках
	ErrFortuneDisabled = errors.New("колесо фортуны временно отключено")
)

// Ошибки фокус-таймера
var (
	// ErrTimerRunning — таймер уже запущен
	ErrTimerRunning = errors.New("таймер уже запущен")
	// ErrTimerIdle — таймер не запущен
	ErrTimerIdle = errors.New("таймер не запущен")
	// ErrInvalidPomodoroConfig — длительности фаз вне допустимых границ
	ErrInvalidPomodoroConfig = errors.New("фокус 1–180 мин, короткий перерыв 1–60, длинный 1–120")
	// ErrFocusDisabled — фокус-таймер отключён в настройках
	ErrFocusDisabled = errors.New("фокус-таймер временно отключён")
)

// Ошибки уровней
var (
	// ErrNegativeXP — попытка начислить отрицательный опыт
	ErrNegativeXP = errors.New("опыт нельзя уменьшать")
)

// Ошибки админки
var (
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrWipeDisabled — хеш пароля не задан, полный сброс недоступен
	ErrWipeDisabled = errors.New("сброс данных отключён: не задан WIPE_PASSWORD_HASH")
)

var userFacing = []error{
	ErrInvalidAmount, ErrEmptyName, ErrInvalidDate, ErrNotFound, ErrTextTooLong,
	ErrDayOutOfWindow,
	ErrInvalidTxType, ErrEmptyDescription, ErrFinanceDisabled,
	ErrNoPendingTasks, ErrNoSpinsLeft, ErrAlreadySpinning, ErrNoPendingResult, ErrFortuneDisabled,
	ErrTimerRunning, ErrTimerIdle, ErrInvalidPomodoroConfig, ErrFocusDisabled,
	ErrNegativeXP,
	ErrWrongPassword, ErrTooManyAttempts, ErrWipeDisabled,
}

// IsUserFacing сообщает, можно ли показать текст ошибки пользователю как есть.
func IsUserFacing(err error) bool {
	for _, target := range userFacing {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
