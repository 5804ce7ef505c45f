package demo

import (
	"time"

	"github.com/sadopc/myway/internal/store"
)

func at(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}

func ref[T any](v T) *T { return &v }

var modules = []store.Module{
	{ID: 1, Name: "Advanced Web Development", Description: "Full-stack web development with React, Node.js, and databases", Color: "#3B82F6",
		CreatedAt: at("2024-09-15T08:00:00Z"), UpdatedAt: at("2026-01-10T14:30:00Z"), LastAccessedAt: ref(at("2026-01-14T09:15:00Z"))},
	{ID: 2, Name: "Machine Learning Fundamentals", Description: "Introduction to ML algorithms, neural networks, and data science", Color: "#10B981",
		CreatedAt: at("2024-09-15T08:00:00Z"), UpdatedAt: at("2026-01-12T16:45:00Z"), LastAccessedAt: ref(at("2026-01-13T10:20:00Z"))},
	{ID: 3, Name: "Database Systems", Description: "SQL, NoSQL, database design, and optimization techniques", Color: "#F59E0B",
		CreatedAt: at("2024-09-15T08:00:00Z"), UpdatedAt: at("2026-01-11T11:20:00Z"), LastAccessedAt: ref(at("2026-01-13T15:40:00Z"))},
	{ID: 4, Name: "Software Engineering Principles", Description: "Design patterns, architecture, testing, and best practices", Color: "#8B5CF6",
		CreatedAt: at("2024-09-15T08:00:00Z"), UpdatedAt: at("2026-01-09T13:10:00Z"), LastAccessedAt: ref(at("2026-01-12T08:30:00Z"))},
	{ID: 5, Name: "Mobile App Development", Description: "Building cross-platform mobile apps with React Native", Color: "#EC4899",
		CreatedAt: at("2024-09-20T08:00:00Z"), UpdatedAt: at("2026-01-08T10:00:00Z"), LastAccessedAt: ref(at("2026-01-11T14:15:00Z"))},
}

func urlResource(id, moduleID int64, title, content, created string, count int64) store.Resource {
	return store.Resource{ID: id, ModuleID: moduleID, Title: title, Type: store.ResourceURL, Content: content, CreatedAt: at(created), AccessCount: count}
}

func noteResource(id, moduleID int64, title, content, created string, count int64) store.Resource {
	return store.Resource{ID: id, ModuleID: moduleID, Title: title, Type: store.ResourceNote, Content: content, CreatedAt: at(created), AccessCount: count}
}

func fileResource(id, moduleID int64, title, name, blob, created string, count int64) store.Resource {
	return store.Resource{ID: id, ModuleID: moduleID, Title: title, Type: store.ResourceFile, Content: name, FilePath: ref(blob), CreatedAt: at(created), AccessCount: count}
}

var resources = []store.Resource{
	urlResource(1, 1, "Course Syllabus", "https://example.com/web-dev-syllabus", "2024-09-15T09:00:00Z", 15),
	noteResource(2, 1, "React Hooks Cheatsheet", "useState: for state management\nuseEffect: for side effects\nuseContext: for context API\nuseReducer: for complex state\nuseMemo: for memoization\nuseCallback: for callback memoization", "2024-10-01T10:30:00Z", 42),
	fileResource(3, 1, "Project Requirements PDF", "project-requirements.pdf", "demo-web-dev-requirements.pdf", "2024-10-15T14:20:00Z", 8),
	urlResource(4, 1, "MDN Web Docs", "https://developer.mozilla.org", "2024-09-20T11:00:00Z", 28),

	urlResource(5, 2, "Andrew Ng ML Course", "https://www.coursera.org/learn/machine-learning", "2024-09-15T09:30:00Z", 22),
	noteResource(6, 2, "Neural Networks Notes", "Perceptron: Single layer neural network\nBackpropagation: Algorithm for training neural networks\nActivation functions: ReLU, Sigmoid, Tanh\nGradient Descent: Optimization algorithm\nOverfitting: Model too complex for data", "2024-10-05T15:45:00Z", 35),
	fileResource(7, 2, "Dataset - Iris Classification", "iris-dataset.csv", "demo-iris-dataset.csv", "2024-10-20T13:00:00Z", 12),
	noteResource(8, 2, "Python ML Libraries Guide", "NumPy: Numerical computing\nPandas: Data manipulation\nScikit-learn: ML algorithms\nTensorFlow: Deep learning\nMatplotlib: Data visualization", "2024-09-25T16:30:00Z", 18),

	urlResource(9, 3, "PostgreSQL Documentation", "https://www.postgresql.org/docs/", "2024-09-15T10:00:00Z", 31),
	noteResource(10, 3, "SQL Query Optimization Tips", "Use indexes wisely\nAvoid SELECT *\nUse JOINs instead of subqueries when possible\nAnalyze query execution plans\nDenormalize when necessary for read-heavy workloads", "2024-10-10T12:15:00Z", 27),
	fileResource(11, 3, "Database Design Assignment", "db-assignment-3.pdf", "demo-db-assignment.pdf", "2024-11-01T09:30:00Z", 9),

	urlResource(12, 4, "Design Patterns Book", "https://refactoring.guru/design-patterns", "2024-09-15T11:00:00Z", 19),
	noteResource(13, 4, "SOLID Principles Summary", "S - Single Responsibility Principle\nO - Open/Closed Principle\nL - Liskov Substitution Principle\nI - Interface Segregation Principle\nD - Dependency Inversion Principle", "2024-09-28T14:00:00Z", 24),
	noteResource(14, 4, "Testing Best Practices", "Write tests first (TDD)\nKeep tests simple and focused\nUse descriptive test names\nMock external dependencies\nAim for high code coverage", "2024-10-12T16:20:00Z", 16),

	urlResource(15, 5, "React Native Documentation", "https://reactnative.dev/docs/getting-started", "2024-09-20T09:00:00Z", 14),
	noteResource(16, 5, "Mobile UI/UX Guidelines", "Follow platform-specific design guidelines\nOptimize for touch interactions\nConsider different screen sizes\nMinimize loading times\nProvide offline functionality", "2024-10-05T11:30:00Z", 11),
	fileResource(17, 5, "App Wireframes", "app-wireframes.png", "demo-wireframes.png", "2024-10-18T15:00:00Z", 7),
}

func openTodo(id, moduleID int64, title, desc, priority, created string) store.Todo {
	return store.Todo{ID: id, ModuleID: moduleID, Title: title, Description: desc, Priority: priority, CreatedAt: at(created), UpdatedAt: at(created)}
}

func doneTodo(id, moduleID int64, title, desc, priority, created, completed string) store.Todo {
	return store.Todo{ID: id, ModuleID: moduleID, Title: title, Description: desc, Priority: priority, Completed: true,
		CreatedAt: at(created), UpdatedAt: at(completed), CompletedAt: ref(at(completed))}
}

var todos = []store.Todo{
	doneTodo(1, 1, "Complete React Router assignment", "Implement nested routes and protected routes", store.PriorityHigh, "2024-11-15T09:00:00Z", "2024-11-20T14:30:00Z"),
	doneTodo(2, 1, "Build REST API with Express", "Create CRUD endpoints for blog posts", store.PriorityHigh, "2024-11-22T10:00:00Z", "2024-11-28T16:45:00Z"),
	openTodo(3, 1, "Add authentication to final project", "Implement JWT-based authentication", store.PriorityHigh, "2026-01-08T11:00:00Z"),
	openTodo(4, 1, "Write unit tests for components", "Use Jest and React Testing Library", store.PriorityMedium, "2026-01-10T13:30:00Z"),
	openTodo(5, 1, "Optimize bundle size", "Code splitting and lazy loading", store.PriorityLow, "2026-01-12T15:00:00Z"),

	doneTodo(6, 2, "Complete linear regression lab", "Implement gradient descent from scratch", store.PriorityHigh, "2024-11-10T09:30:00Z", "2024-11-15T11:20:00Z"),
	doneTodo(7, 2, "Train neural network on MNIST", "Achieve >95% accuracy", store.PriorityHigh, "2024-12-01T14:00:00Z", "2024-12-08T16:30:00Z"),
	doneTodo(8, 2, "Study cross-validation techniques", "K-fold, stratified, time-series CV", store.PriorityMedium, "2024-12-15T10:00:00Z", "2024-12-18T13:45:00Z"),
	openTodo(9, 2, "Implement decision tree classifier", "For final project dataset", store.PriorityHigh, "2026-01-09T12:00:00Z"),
	openTodo(10, 2, "Read research paper on transformers", "Attention is All You Need paper", store.PriorityMedium, "2026-01-11T14:30:00Z"),

	doneTodo(11, 3, "Design e-commerce database schema", "Include users, products, orders, reviews", store.PriorityHigh, "2024-11-05T08:30:00Z", "2024-11-12T15:20:00Z"),
	doneTodo(12, 3, "Write complex JOIN queries", "Practice 3+ table joins with aggregations", store.PriorityMedium, "2024-11-18T11:00:00Z", "2024-11-22T14:15:00Z"),
	openTodo(13, 3, "Optimize slow query from assignment", "Add indexes and rewrite query", store.PriorityHigh, "2026-01-07T09:45:00Z"),
	openTodo(14, 3, "Study MongoDB aggregation pipeline", "For NoSQL comparison assignment", store.PriorityMedium, "2026-01-10T16:00:00Z"),
	openTodo(15, 3, "Review transaction isolation levels", "Prepare for midterm exam", store.PriorityLow, "2026-01-13T10:30:00Z"),

	doneTodo(16, 4, "Implement Factory pattern in project", "Refactor object creation logic", store.PriorityMedium, "2024-11-08T13:00:00Z", "2024-11-14T17:30:00Z"),
	doneTodo(17, 4, "Write integration tests", "Test API endpoints with supertest", store.PriorityHigh, "2024-12-03T10:30:00Z", "2024-12-10T15:00:00Z"),
	openTodo(18, 4, "Refactor code using Strategy pattern", "Replace conditional logic", store.PriorityMedium, "2026-01-08T14:15:00Z"),
	openTodo(19, 4, "Set up CI/CD pipeline", "GitHub Actions for automated testing", store.PriorityHigh, "2026-01-11T11:45:00Z"),
	openTodo(20, 4, "Document API with Swagger", "Add OpenAPI definitions", store.PriorityLow, "2026-01-12T13:20:00Z"),

	doneTodo(21, 5, "Set up React Native project", "Initialize with Expo CLI", store.PriorityHigh, "2024-11-25T09:00:00Z", "2024-11-25T10:30:00Z"),
	doneTodo(22, 5, "Implement navigation stack", "Using React Navigation", store.PriorityHigh, "2024-12-02T11:15:00Z", "2024-12-05T14:45:00Z"),
	openTodo(23, 5, "Build authentication screens", "Login, signup, password reset", store.PriorityHigh, "2026-01-06T10:00:00Z"),
	openTodo(24, 5, "Integrate with Firebase", "Setup Firestore for backend", store.PriorityMedium, "2026-01-09T15:30:00Z"),
	openTodo(25, 5, "Add push notifications", "Using Expo Notifications", store.PriorityLow, "2026-01-12T12:00:00Z"),
}

// activity describes how one module's sessions are spread over the
// trailing window.
type activity struct {
	moduleID   int64
	count      int
	days       int
	baseHour   int
	hourSpan   int
	completion float64
	todoIDs    []int64
}

var activities = []activity{
	{moduleID: 1, count: 60, days: 30, baseHour: 14, hourSpan: 6, completion: 0.85, todoIDs: []int64{1, 2, 3, 4}},
	{moduleID: 2, count: 45, days: 30, baseHour: 10, hourSpan: 8, completion: 0.80, todoIDs: []int64{6, 7, 8, 9}},
	{moduleID: 3, count: 35, days: 30, baseHour: 13, hourSpan: 6, completion: 0.75, todoIDs: []int64{11, 12, 13, 14}},
	{moduleID: 4, count: 30, days: 30, baseHour: 15, hourSpan: 5, completion: 0.82, todoIDs: []int64{16, 17, 18, 19}},
	{moduleID: 5, count: 20, days: 20, baseHour: 16, hourSpan: 4, completion: 0.70, todoIDs: []int64{21, 22, 23}},
}
