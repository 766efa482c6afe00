// Package repository define los contratos de almacenamiento del motor de tokens.
//
// Las implementaciones viven en internal/store/{authcode,memory,pg}:
//
//	┌──────────────────────────────────────────────────────┐
//	│                  internal/auth (engine)              │
//	└──────────────────────────────────────────────────────┘
//	                         │
//	                         ▼
//	┌──────────────────────────────────────────────────────┐
//	│            domain/repository (interfaces)            │
//	│  AuthCode, RefreshToken, Client, User repositories   │
//	└──────────────────────────────────────────────────────┘
//	                         │
//	        ┌────────────────┼────────────────┐
//	        ▼                ▼                ▼
//	┌──────────────┐ ┌──────────────┐ ┌──────────────┐
//	│ store/       │ │ store/pg     │ │ store/memory │
//	│ authcode     │ │ (pgx)        │ │              │
//	│ (cache)      │ │              │ │              │
//	└──────────────┘ └──────────────┘ └──────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Codes y refresh tokens se guardan solo por hash (nunca en claro)
//   - Errores de dominio en errors.go
package repository
