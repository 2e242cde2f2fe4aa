package achievements

import "github.com/ideaforge/idea-engine/internal/models"

// Badges lists the badge metadata referenced by achievement
// definitions. Seeded into storage by seedctl.
var Badges = []models.Badge{
	{ID: "first-steps", Name: "Primeros Pasos", Description: "Completaste tu primer proyecto", Icon: "🌱"},
	{ID: "polyglot", Name: "Políglota", Description: "Dominaste cinco lenguajes distintos", Icon: "🗣️"},
	{ID: "full-stack", Name: "Full Stack", Description: "Frontend, backend y base de datos en un mismo proyecto", Icon: "🥞"},
	{ID: "marathon", Name: "Maratonista", Description: "Siete días seguidos completando proyectos", Icon: "🏃"},
	{ID: "night-owl", Name: "Búho Nocturno", Description: "Diez proyectos terminados de madrugada", Icon: "🦉"},
	{ID: "grandmaster", Name: "Gran Maestro", Description: "Completaste proyectos de nivel Master", Icon: "👑"},
}

// All is the static achievement catalog, in unlock-display order.
// Evaluation order and API order both follow this slice.
var All = []*Achievement{
	// Student
	{ID: "first-project", Title: "Hola Mundo", Description: "Completa tu primer proyecto", Icon: "🌱", Level: models.LevelStudent, BadgeID: "first-steps",
		Condition: MinProjects{Count: 1}},
	{ID: "five-projects", Title: "Calentando Motores", Description: "Completa 5 proyectos", Icon: "🔥", Level: models.LevelStudent,
		Condition: MinProjects{Count: 5}},
	{ID: "first-web", Title: "Primera Web", Description: "Completa un proyecto de tipo Web", Icon: "🌐", Level: models.LevelStudent,
		Condition: RequiredAppTypes{Values: []string{"Aplicación Web"}}},
	{ID: "same-day-sprint", Title: "Sprint Relámpago", Description: "Completa 3 proyectos el mismo día", Icon: "⚡", Level: models.LevelStudent,
		Condition: Consistency{Type: ConsistencySameDay, Count: 3}},

	// Trainee
	{ID: "ten-projects", Title: "Doble Dígito", Description: "Completa 10 proyectos", Icon: "🔟", Level: models.LevelTrainee,
		Condition: MinProjects{Count: 10}},
	{ID: "js-and-python", Title: "Dos Mundos", Description: "Completa proyectos con JavaScript y Python", Icon: "🐍", Level: models.LevelTrainee,
		Condition: RequiredLanguages{Values: []string{"JavaScript", "Python"}}},
	{ID: "weekend-warrior", Title: "Guerrero del Finde", Description: "Completa 5 proyectos en fin de semana", Icon: "🛡️", Level: models.LevelTrainee,
		Condition: Consistency{Type: ConsistencyDayOfWeek, Count: 5, DayType: DayTypeWeekend}},
	{ID: "three-day-streak", Title: "Constancia", Description: "Completa proyectos 3 días seguidos", Icon: "📅", Level: models.LevelTrainee,
		Condition: Consistency{Type: ConsistencyStreak, Count: 3}},

	// Junior
	{ID: "twenty-projects", Title: "Veterano", Description: "Completa 20 proyectos", Icon: "🎖️", Level: models.LevelJunior,
		Condition: MinProjects{Count: 20}},
	{ID: "framework-tour", Title: "Tour de Frameworks", Description: "Completa proyectos con React, Django y Express", Icon: "🧰", Level: models.LevelJunior,
		Condition: RequiredFrameworks{Values: []string{"React", "Django", "Express"}}},
	{ID: "db-explorer", Title: "Explorador de Datos", Description: "Completa proyectos con PostgreSQL y MongoDB", Icon: "🗄️", Level: models.LevelJunior,
		Condition: RequiredDatabases{Values: []string{"PostgreSQL", "MongoDB"}}},
	{ID: "junior-grind", Title: "Camino Junior", Description: "Completa 5 proyectos de nivel Junior", Icon: "🪜", Level: models.LevelJunior,
		Condition: LevelCount{Level: models.LevelJunior, Count: 5}},
	{ID: "django-duo", Title: "Dúo Django", Description: "Completa 2 proyectos que combinen Python y Django", Icon: "🎸", Level: models.LevelJunior,
		Condition: Combination{Languages: []string{"Python"}, Frameworks: []string{"Django"}, Count: 2}},
	{ID: "week-streak", Title: "Semana Completa", Description: "Completa proyectos 7 días seguidos", Icon: "🏃", Level: models.LevelJunior, BadgeID: "marathon",
		Condition: Consistency{Type: ConsistencyStreak, Count: 7}},

	// Senior
	{ID: "fifty-projects", Title: "Medio Centenar", Description: "Completa 50 proyectos", Icon: "🏔️", Level: models.LevelSenior,
		Condition: MinProjects{Count: 50}},
	{ID: "polyglot-five", Title: "Políglota", Description: "Completa proyectos con 5 lenguajes distintos", Icon: "🗣️", Level: models.LevelSenior, BadgeID: "polyglot",
		Condition: RequiredLanguages{Values: []string{"JavaScript", "Python", "Go", "Rust", "Java"}}},
	{ID: "full-stack-single", Title: "Full Stack", Description: "Un solo proyecto con React, Node.js y PostgreSQL", Icon: "🥞", Level: models.LevelSenior, BadgeID: "full-stack",
		Condition: RequiredStack{Values: []string{"React", "Node.js", "PostgreSQL"}}},
	{ID: "month-rhythm", Title: "Ritmo Mensual", Description: "Completa proyectos 3 meses seguidos", Icon: "🗓️", Level: models.LevelSenior,
		Condition: Consistency{Type: ConsistencyMonthly, Count: 3}},
	{ID: "night-coder", Title: "Código Nocturno", Description: "Completa 10 proyectos de madrugada", Icon: "🦉", Level: models.LevelSenior, BadgeID: "night-owl",
		Condition: Consistency{Type: ConsistencyTimeOfDay, Count: 10, TimeRange: BandNight}},

	// Master
	{ID: "hundred-projects", Title: "Centenario", Description: "Completa 100 proyectos", Icon: "💯", Level: models.LevelMaster,
		Condition: MinProjects{Count: 100}},
	{ID: "master-trio", Title: "Gran Maestro", Description: "Completa 3 proyectos de nivel Master", Icon: "👑", Level: models.LevelMaster, BadgeID: "grandmaster",
		Condition: LevelCount{Level: models.LevelMaster, Count: 3}},
	{ID: "month-of-days", Title: "Mes de Hierro", Description: "Completa proyectos 30 días seguidos", Icon: "⚙️", Level: models.LevelMaster,
		Condition: Consistency{Type: ConsistencyStreak, Count: 30}},
}
