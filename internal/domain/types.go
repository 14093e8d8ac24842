package domain

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Opponent returns the other player. Empty has no opponent.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return Empty
}

func (p PlayerID) IsPlayer() bool {
	return p == Player1 || p == Player2
}

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4

	// NoRow is returned by FindLowestRow when nothing can be dropped in a column
	NoRow = -1
)

// to represent the game status
type GameStatus string

const (
	StatusPlaying GameStatus = "playing"
	StatusWon     GameStatus = "won"
	StatusDraw    GameStatus = "draw"
)

// Position is a single cell on the board, used to report winning lines
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GameMode says who controls Player2
type GameMode string

const (
	ModePvP GameMode = "pvp"
	ModeAI  GameMode = "ai"
)

func ParseGameMode(mode string) (GameMode, error) {
	switch GameMode(mode) {
	case ModePvP, ModeAI:
		return GameMode(mode), nil
	}
	return "", ErrInvalidMode
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the supported AI levels from weakest to strongest
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty validates a difficulty name. An empty string means medium.
func ParseDifficulty(difficulty string) (Difficulty, error) {
	switch Difficulty(difficulty) {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(difficulty), nil
	}
	return "", ErrInvalidDifficulty
}

func (d Difficulty) Description() string {
	switch d {
	case DifficultyEasy:
		return "Random moves - Perfect for beginners"
	case DifficultyMedium:
		return "Blocks wins and tries to win - Good challenge"
	case DifficultyHard:
		return "Advanced strategy - Very challenging!"
	}
	return ""
}

var BotNames = map[Difficulty]string{
	DifficultyEasy:   "Alice",
	DifficultyMedium: "Bob",
	DifficultyHard:   "Charles",
}

func (d Difficulty) BotName() string {
	if name, ok := BotNames[d]; ok {
		return name
	}
	return "BOT"
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrColumnFull        Error = "column is full"
	ErrColumnOutOfRange  Error = "column out of range"
	ErrGameOver          Error = "game is already over"
	ErrInvalidMode       Error = "invalid game mode"
	ErrInvalidDifficulty Error = "invalid difficulty"
)
