package internal

// Version is the application version, set at release time.
const Version = "2.0.0"
