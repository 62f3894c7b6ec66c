package sqlinline

// QCreateSchema creates the tables when they do not exist yet.
const QCreateSchema = `--sql 1b7ef68e-32e2-4a2f-85c4-6d0e849f9e05
create table if not exists categories (
  id bigserial primary key,
  name text not null unique,
  description text,
  details text,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
create table if not exists templates (
  id bigserial primary key,
  category_id bigint not null references categories(id) on delete cascade,
  project_name text,
  original_image_path text,
  svg_path text,
  dimensions jsonb,
  printing_dimensions jsonb,
  prompt_used text,
  generation_prompt text,
  design_preferences jsonb,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
create index if not exists templates_category_created_idx on templates(category_id, created_at desc);
create index if not exists templates_project_idx on templates(project_name);
create table if not exists generation_jobs (
  id bigserial primary key,
  category_id bigint not null references categories(id) on delete cascade,
  status text not null,
  request_data jsonb,
  error_message text,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`
