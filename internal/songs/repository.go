package songs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const songColumns = `id, organization_id, title, COALESCE(artist, ''), COALESCE(scale, ''), COALESCE(tempo, ''), COALESCE(chords, ''), COALESCE(rhythm, ''), COALESCE(lyrics, ''), created_at, updated_at`

// GetSong loads one song by id. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetSong(ctx context.Context, id int64) (Song, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id)
	return scanSong(row)
}

// ListSongs returns songs for one organization, optionally filtered by
// title/artist substring match.
func (r *Repository) ListSongs(ctx context.Context, filter SongFilter) ([]Song, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE organization_id = $1
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR artist ILIKE '%' || $3 || '%')
		ORDER BY id`,
		filter.OrganizationID, filter.Title, filter.Artist)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// InsertSong creates a song, stamping both timestamps server-side.
func (r *Repository) InsertSong(ctx context.Context, input SongInput) (Song, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO songs (organization_id, title, artist, scale, tempo, chords, rhythm, lyrics, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NOW(), NOW())
		RETURNING `+songColumns,
		input.OrganizationID, input.Title, input.Artist, input.Scale, input.Tempo, input.Chords, input.Rhythm, input.Lyrics)
	return scanSong(row)
}

// UpdateSong applies a partial update, refreshing updated_at. Returns
// pgx.ErrNoRows when the song does not exist.
func (r *Repository) UpdateSong(ctx context.Context, id int64, patch SongPatch) (Song, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE songs SET
			title  = COALESCE($2, title),
			artist = COALESCE($3, artist),
			scale  = COALESCE($4, scale),
			tempo  = COALESCE($5, tempo),
			chords = COALESCE($6, chords),
			rhythm = COALESCE($7, rhythm),
			lyrics = COALESCE($8, lyrics),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+songColumns,
		id, patch.Title, patch.Artist, patch.Scale, patch.Tempo, patch.Chords, patch.Rhythm, patch.Lyrics)
	return scanSong(row)
}

// DeleteSong removes a song and reports whether a row was deleted.
func (r *Repository) DeleteSong(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (Song, error) {
	var song Song
	err := row.Scan(&song.ID, &song.OrganizationID, &song.Title, &song.Artist, &song.Scale, &song.Tempo, &song.Chords, &song.Rhythm, &song.Lyrics, &song.CreatedAt, &song.UpdatedAt)
	return song, err
}
