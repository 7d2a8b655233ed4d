package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create deals table. Participants, documents, terms, and the
			-- append-only timeline live as JSONB on the aggregate row:
			-- they are always read and written with the deal, never
			-- queried independently.
			CREATE TABLE deals (
				id UUID PRIMARY KEY,
				type VARCHAR(50) NOT NULL CHECK (type IN ('full_sale', 'lease', 'partnership', 'breeding', 'training')),
				stage VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'pending', 'on_hold', 'cancelled', 'completed')),
				horse VARCHAR(255) NOT NULL,
				participants JSONB NOT NULL DEFAULT '[]',
				documents JSONB NOT NULL DEFAULT '[]',
				terms JSONB,
				timeline JSONB NOT NULL DEFAULT '[]',
				owner VARCHAR(255) NOT NULL,
				version BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_deals_status ON deals(status);
			CREATE INDEX idx_deals_type ON deals(type);
			CREATE INDEX idx_deals_owner ON deals(owner);
			CREATE INDEX idx_deals_created_at ON deals(created_at);
		`,
	}
}
